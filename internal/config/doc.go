// Package config loads, normalizes, and validates ikit configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// IMAGEKIT_URL_ENDPOINT and IMAGEKIT_PRIVATE_KEY. Credentials are optional at
// load time so commands that only render URLs or inspect history still work
// without an account configured.
package config
