package protocol

import (
	"encoding/base64"
	"sourcesync/domain/mimetypes"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const defaultAudioMime = string(mimetypes.Unknown)

// ChunkMime names the media type of an audio chunk. An audio data URL header
// wins, a declared audio type comes next, otherwise the decoded bytes are sniffed.
func ChunkMime(chunk, declared string) string {
	if header, data, ok := strings.Cut(chunk, ","); ok && strings.HasPrefix(header, "data:") {
		mediaType := strings.TrimPrefix(header, "data:")
		mediaType, _, _ = strings.Cut(mediaType, ";")
		if mimetypes.IsAudio(mediaType) {
			return mediaType
		}
		chunk = data
	}
	if mimetypes.IsAudio(declared) {
		return declared
	}

	raw, err := base64.StdEncoding.DecodeString(chunk)
	if err != nil || len(raw) == 0 {
		return defaultAudioMime
	}
	return mimetype.Detect(raw).String()
}
