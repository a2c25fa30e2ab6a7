package ffmpeg

// AudioMetadata represents metadata extracted from an audio file
type AudioMetadata struct {
	Duration   float64 `json:"duration"`    // Duration in seconds
	SampleRate int     `json:"sample_rate"` // Sample rate in Hz
	Channels   int     `json:"channels"`    // Number of audio channels
	Bitrate    int     `json:"bitrate"`     // Bitrate in bits per second
	Format     string  `json:"format"`      // Container format (mov,mp4,m4a..., mp3, ogg)
	Codec      string  `json:"codec"`       // Audio codec
	Size       int64   `json:"size"`        // File size in bytes
	Title      string  `json:"title"`       // Title metadata
	Artist     string  `json:"artist"`      // Artist metadata
	Album      string  `json:"album"`       // Album metadata
}

// Profile is a fixed set of encoder arguments for one output format
type Profile struct {
	Name  string
	Args  []string // codec arguments placed between the input and the output
	Muxer string   // forced container, empty lets ffmpeg pick from the extension
}

// Output profiles used by the packager
var (
	// ProfileCopy keeps the broadcast AAC stream and only rewraps it.
	ProfileCopy = Profile{Name: "copy", Args: []string{"-c:a", "copy"}, Muxer: "ipod"}
	// ProfileMP3 is LAME VBR quality 1.
	ProfileMP3 = Profile{Name: "mp3", Args: []string{"-c:a", "libmp3lame", "-q:a", "1"}, Muxer: "mp3"}
	// ProfileVorbis is libvorbis quality 6.
	ProfileVorbis = Profile{Name: "vorbis", Args: []string{"-c:a", "libvorbis", "-q:a", "6"}, Muxer: "ogg"}
)
