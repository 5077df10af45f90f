// Command ikit builds delivery URLs, responsive image attributes and signed
// links for a media CDN, and uploads local files to its media library.
//
// Configuration is read from ~/.config/ikit/config.toml (or ./ikit.toml),
// with credentials falling back to IMAGEKIT_* environment variables. A .env
// file in the working directory is loaded first when present.
package main
