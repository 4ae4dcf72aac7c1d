package mimetypes

import (
	"mime"
	"strings"
)

type MIME string

const (
	Unknown MIME = "application/octet-stream"

	AudioWebM MIME = "audio/webm"
	AudioOgg  MIME = "audio/ogg"
	AudioWAV  MIME = "audio/wav"
	AudioMPEG MIME = "audio/mpeg"
	AudioMP4  MIME = "audio/mp4"

	// Browsers record voice into these containers too.
	VideoWebM MIME = "video/webm"
	VideoOgg  MIME = "video/ogg"
)

func Matches(detected string, expected MIME) (MIME, bool) {
	mt, _, err := mime.ParseMediaType(detected)
	if err != nil {
		return Unknown, false
	}
	return expected, mt == string(expected)
}

// IsAudio reports whether a declared or detected type can carry a voice chunk.
// Parameters such as codecs are ignored.
func IsAudio(detected string) bool {
	mt, _, err := mime.ParseMediaType(detected)
	if err != nil {
		return false
	}
	if strings.HasPrefix(mt, "audio/") {
		return true
	}
	_, webm := Matches(mt, VideoWebM)
	_, ogg := Matches(mt, VideoOgg)
	return webm || ogg
}
