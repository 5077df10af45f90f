package upload

// VersionInfo identifies the stored version of a file.
type VersionInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AITag is a tag suggested by an auto-tagging extension.
type AITag struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

// Response is the upload API's description of a stored file. Fields not
// requested through ResponseFields are left empty.
type Response struct {
	FileID            string            `json:"fileId"`
	Name              string            `json:"name"`
	URL               string            `json:"url"`
	ThumbnailURL      string            `json:"thumbnailUrl"`
	FilePath          string            `json:"filePath"`
	FileType          string            `json:"fileType"`
	Height            int               `json:"height"`
	Width             int               `json:"width"`
	Size              int64             `json:"size"`
	Tags              []string          `json:"tags"`
	AITags            []AITag           `json:"AITags"`
	IsPrivateFile     bool              `json:"isPrivateFile"`
	IsPublished       bool              `json:"isPublished"`
	CustomCoordinates string            `json:"customCoordinates"`
	Description       string            `json:"description"`
	VersionInfo       VersionInfo       `json:"versionInfo"`
	CustomMetadata    map[string]any    `json:"customMetadata"`
	EmbeddedMetadata  map[string]any    `json:"embeddedMetadata"`
	ExtensionStatus   map[string]string `json:"extensionStatus"`
	Duration          float64           `json:"duration"`
	BitRate           int64             `json:"bitRate"`
	VideoCodec        string            `json:"videoCodec"`
	AudioCodec        string            `json:"audioCodec"`

	Metadata ResponseMetadata `json:"-"`
}
