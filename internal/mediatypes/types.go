package mediatypes

// Class represents the media class of a tracked file, matching the single
// letter codes used throughout the store and HTTP layers.
type Class string

const (
	// ClassVideo is a video file (.mp4).
	ClassVideo Class = "v"
	// ClassAudio is an audio file (.mp3).
	ClassAudio Class = "a"
	// ClassPhoto is an image file (.jpg, .jpeg, .png).
	ClassPhoto Class = "p"
	// ClassOther is a file outside the accepted extension set.
	ClassOther Class = "o"
)

// Extensions is the set of file extensions ingested by a source. Anything
// else is left on disk untouched.
var Extensions = map[string]bool{
	".mp4":  true,
	".mp3":  true,
	".jpeg": true,
	".jpg":  true,
	".png":  true,
}

// MimeTypes maps an accepted extension to the MIME type served over HTTP.
// Extensions outside the accepted set fall back to "video/mp4" to match the
// historical default used when serving an item whose type could not be
// determined from its name alone.
var MimeTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".mp4":  "video/mp4",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// classByExtension maps an accepted extension to its media class.
var classByExtension = map[string]Class{
	".mp4":  ClassVideo,
	".mp3":  ClassAudio,
	".jpg":  ClassPhoto,
	".jpeg": ClassPhoto,
	".png":  ClassPhoto,
}

// ClassOf returns the media class for a given file extension. The extension
// should be lowercase and include the leading dot (e.g. ".mp4"). Returns
// ClassOther if the extension is not accepted.
func ClassOf(ext string) Class {
	if c, ok := classByExtension[ext]; ok {
		return c
	}
	return ClassOther
}

// MimeType returns the MIME type for a given file extension. The extension
// should be lowercase and include the leading dot. Falls back to
// "video/mp4" for extensions outside the accepted set.
func MimeType(ext string) string {
	if mime, ok := MimeTypes[ext]; ok {
		return mime
	}
	return "video/mp4"
}

// IsAccepted returns true if the extension is one a source will track.
func IsAccepted(ext string) bool {
	return Extensions[ext]
}

// AcceptedExtensions returns every extension a source will track, in no
// particular order.
func AcceptedExtensions() []string {
	exts := make([]string, 0, len(Extensions))
	for ext := range Extensions {
		exts = append(exts, ext)
	}
	return exts
}
