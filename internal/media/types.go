package media

import (
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// Stream describes one subtitle stream of a video.
type Stream struct {
	Index    int    // absolute stream index, as used by -map 0:<index>
	Codec    string // codec_name reported by ffprobe
	Language string // language tag as stored in the container, may be empty
	Title    string
	Size     int64 // estimated payload bytes, 0 when unknown
	Default  bool
	Forced   bool
}

// RawFile is an extracted subtitle waiting to be parsed. The caller owns
// its deletion.
type RawFile struct {
	Path        string
	StreamIndex int
	Size        int64
}

// Bitmap subtitle codecs that cannot be converted to text.
var imageCodecs = []string{
	"hdmv_pgs_subtitle",
	"pgssub",
	"dvd_subtitle",
	"dvdsub",
	"dvb_subtitle",
	"dvbsub",
	"xsub",
}

// IsTextBased reports whether ffmpeg can convert the stream to SRT.
func (s Stream) IsTextBased() bool {
	return !slices.Contains(imageCodecs, strings.ToLower(s.Codec))
}

// LanguageTag returns the parsed stream language, or language.Und.
func (s Stream) LanguageTag() language.Tag {
	lang := strings.TrimSpace(s.Language)
	if lang == "" {
		return language.Und
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return language.Und
	}
	return tag
}

// TextStreams drops streams that cannot be converted to SRT.
func TextStreams(streams []Stream) []Stream {
	out := make([]Stream, 0, len(streams))
	for _, s := range streams {
		if s.IsTextBased() {
			out = append(out, s)
		}
	}
	return out
}

// SelectBest returns the stream with the largest Size, breaking ties by
// the lowest Index. ok is false for an empty slice.
func SelectBest(streams []Stream) (best Stream, ok bool) {
	for i, s := range streams {
		if i == 0 || s.Size > best.Size || (s.Size == best.Size && s.Index < best.Index) {
			best = s
		}
	}
	return best, len(streams) > 0
}

// HasLanguage reports whether any stream is tagged with target's base
// language ("eng" and "en" both match English).
func HasLanguage(streams []Stream, target language.Tag) bool {
	want, conf := target.Base()
	if conf == language.No {
		return false
	}
	for _, s := range streams {
		tag := s.LanguageTag()
		if tag == language.Und {
			continue
		}
		if base, _ := tag.Base(); base == want {
			return true
		}
	}
	return false
}
