package media

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrNoValidMediaURL is returned when normalization finds zero usable URLs
// among all supplied fields.
var ErrNoValidMediaURL = errors.New("no valid media url")

// Media platforms supported by the normalizer.
const (
	PlatformYouTube = "youtube"
	PlatformSpotify = "spotify"
)

var (
	youtubeIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	spotifyIDPattern = regexp.MustCompile(`^[0-9A-Za-z]{22}$`)
)

// RawFields are the raw media URL fields as submitted. LegacyURL is the
// historical single-URL field; it is only consulted when neither typed
// field is supplied.
type RawFields struct {
	YouTubeURL string `json:"youtubeUrl"`
	SpotifyURL string `json:"spotifyUrl"`
	LegacyURL  string `json:"url"`
}

// ValidationError names one rejected field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CanonicalMediaReference is the normalized result: a single playback URL
// plus the validated per-platform URLs. PrimaryURL always equals one of the
// platform URLs, YouTube preferred.
type CanonicalMediaReference struct {
	PrimaryURL string `json:"primaryUrl"`
	YouTubeURL string `json:"youtubeUrl,omitempty"`
	SpotifyURL string `json:"spotifyUrl,omitempty"`
}

// CanonicalYouTubeURL builds the canonical watch URL for a video ID.
func CanonicalYouTubeURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

// CanonicalSpotifyURL builds the canonical track URL for a Spotify track ID.
func CanonicalSpotifyURL(id string) string {
	return "https://open.spotify.com/track/" + id
}

// ExtractYouTubeID pulls the 11-character video ID out of a YouTube URL.
// Accepted shapes: youtube.com/watch?v=ID, youtu.be/ID, youtube.com/embed/ID
// and the music.youtube.com variants.
func ExtractYouTubeID(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	switch host {
	case "youtu.be":
		id := strings.Trim(u.Path, "/")
		if youtubeIDPattern.MatchString(id) {
			return id, true
		}
	case "youtube.com", "www.youtube.com", "m.youtube.com", "music.youtube.com":
		if strings.HasPrefix(u.Path, "/embed/") {
			id := strings.TrimPrefix(u.Path, "/embed/")
			id = strings.Trim(id, "/")
			if youtubeIDPattern.MatchString(id) {
				return id, true
			}
			return "", false
		}
		if u.Path == "/watch" {
			id := u.Query().Get("v")
			if youtubeIDPattern.MatchString(id) {
				return id, true
			}
		}
	}
	return "", false
}

// ExtractSpotifyID pulls the 22-character track ID out of a Spotify track URL.
// Accepted shape: open.spotify.com/track/ID (with an optional locale prefix
// such as /intl-de/track/ID).
func ExtractSpotifyID(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", false
	}

	if strings.ToLower(u.Hostname()) != "open.spotify.com" {
		return "", false
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, seg := range segments {
		if seg == "track" && i+1 < len(segments) {
			id := segments[i+1]
			if spotifyIDPattern.MatchString(id) {
				return id, true
			}
			return "", false
		}
	}
	return "", false
}

// detectPlatform guesses the platform of a legacy URL by host substring.
func detectPlatform(raw string) string {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "youtube.com"), strings.Contains(lower, "youtu.be"):
		return PlatformYouTube
	case strings.Contains(lower, "spotify.com"):
		return PlatformSpotify
	default:
		return ""
	}
}

// Normalize validates the supplied media URL fields and produces a canonical
// playback reference. It is a pure function: all validation problems are
// collected rather than short-circuited, so callers can report every issue at
// once. A nil reference means no field yielded a valid URL; the returned
// error slice is non-empty in that case.
func Normalize(raw RawFields) (*CanonicalMediaReference, []ValidationError) {
	var errs []ValidationError
	ref := &CanonicalMediaReference{}

	if raw.YouTubeURL != "" {
		if id, ok := ExtractYouTubeID(raw.YouTubeURL); ok {
			ref.YouTubeURL = CanonicalYouTubeURL(id)
		} else {
			errs = append(errs, ValidationError{Field: "youtubeUrl", Message: "not a recognized YouTube video URL"})
		}
	}

	if raw.SpotifyURL != "" {
		if id, ok := ExtractSpotifyID(raw.SpotifyURL); ok {
			ref.SpotifyURL = CanonicalSpotifyURL(id)
		} else {
			errs = append(errs, ValidationError{Field: "spotifyUrl", Message: "not a recognized Spotify track URL"})
		}
	}

	// The legacy single-URL field is only honored when neither typed field
	// was supplied at all.
	if raw.YouTubeURL == "" && raw.SpotifyURL == "" && raw.LegacyURL != "" {
		switch detectPlatform(raw.LegacyURL) {
		case PlatformYouTube:
			if id, ok := ExtractYouTubeID(raw.LegacyURL); ok {
				ref.YouTubeURL = CanonicalYouTubeURL(id)
			} else {
				errs = append(errs, ValidationError{Field: "url", Message: "not a recognized YouTube video URL"})
			}
		case PlatformSpotify:
			if id, ok := ExtractSpotifyID(raw.LegacyURL); ok {
				ref.SpotifyURL = CanonicalSpotifyURL(id)
			} else {
				errs = append(errs, ValidationError{Field: "url", Message: "not a recognized Spotify track URL"})
			}
		default:
			errs = append(errs, ValidationError{Field: "url", Message: "unrecognized media platform"})
		}
	}

	// YouTube wins when both are present: the web player embeds the video
	// platform by default.
	switch {
	case ref.YouTubeURL != "":
		ref.PrimaryURL = ref.YouTubeURL
	case ref.SpotifyURL != "":
		ref.PrimaryURL = ref.SpotifyURL
	default:
		if len(errs) == 0 {
			errs = append(errs, ValidationError{Field: "url", Message: "at least one media URL is required"})
		}
		return nil, errs
	}

	return ref, errs
}
