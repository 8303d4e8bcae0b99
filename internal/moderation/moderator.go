// Package moderation screens outgoing chat content before it is persisted or
// broadcast. Checks are pure functions over the candidate text and file
// metadata; the first failing check decides the rejection reason.
package moderation

import (
	"regexp"
	"strings"

	"storefront-chat-service/internal/models"
)

// Rejection reasons surfaced to the sender.
const (
	ReasonProfanity       = "inappropriate language"
	ReasonRestricted      = "restricted content"
	ReasonLink            = "links not allowed"
	ReasonUnsupportedFile = "unsupported file type"
	ReasonFileTooLarge    = "file too large"
	ReasonEmpty           = "empty message"
)

// MaxFileBytes is the default upload cap (10 MiB).
const MaxFileBytes = 10 << 20

// Config carries the injectable moderation lists. Deployments customize the
// lists without code changes.
type Config struct {
	ProfanityList    []string
	RestrictedTerms  []string
	AllowedMIMETypes []string
	MaxFileBytes     int64
}

// DefaultConfig returns the reference deployment's lists.
func DefaultConfig() Config {
	return Config{
		ProfanityList: []string{
			"damn", "hell", "crap", "stupid", "idiot", "dumb",
		},
		RestrictedTerms: []string{
			"free coins", "topup", "top up", "top-up", "cheap gold",
			"discount code", "paypal", "wire transfer", "resell",
		},
		AllowedMIMETypes: []string{
			"image/jpeg", "image/png", "image/gif", "image/webp",
			"video/mp4", "video/webm",
			"audio/mpeg", "audio/ogg", "audio/wav",
			"application/pdf",
		},
		MaxFileBytes: MaxFileBytes,
	}
}

// Verdict is the outcome of a moderation pass.
type Verdict struct {
	Allowed bool
	Reason  string
}

func allowed() Verdict          { return Verdict{Allowed: true} }
func rejected(r string) Verdict { return Verdict{Reason: r} }

var urlPattern = regexp.MustCompile(`(?i)\b[a-z][a-z0-9+.-]*://\S+`)

// Moderator classifies candidate messages as allowed or rejected. It holds
// no mutable state and is safe for concurrent use.
type Moderator struct {
	profanity    map[string]struct{}
	restricted   []string
	allowedMIME  map[string]struct{}
	maxFileBytes int64
}

// New builds a Moderator from the config. Empty list entries are dropped;
// matching is case-insensitive throughout.
func New(cfg Config) *Moderator {
	m := &Moderator{
		profanity:    make(map[string]struct{}, len(cfg.ProfanityList)),
		allowedMIME:  make(map[string]struct{}, len(cfg.AllowedMIMETypes)),
		maxFileBytes: cfg.MaxFileBytes,
	}
	if m.maxFileBytes <= 0 {
		m.maxFileBytes = MaxFileBytes
	}
	for _, w := range cfg.ProfanityList {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			m.profanity[w] = struct{}{}
		}
	}
	for _, t := range cfg.RestrictedTerms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			m.restricted = append(m.restricted, t)
		}
	}
	for _, mt := range cfg.AllowedMIMETypes {
		mt = strings.ToLower(strings.TrimSpace(mt))
		if mt != "" {
			m.allowedMIME[mt] = struct{}{}
		}
	}
	return m
}

// Check runs every moderation rule against the candidate text and optional
// file metadata. The same input always yields the same verdict.
func (m *Moderator) Check(text string, file *models.FileAttachment) Verdict {
	lowered := strings.ToLower(text)

	for _, token := range tokenize(lowered) {
		if _, bad := m.profanity[token]; bad {
			return rejected(ReasonProfanity)
		}
	}

	for _, term := range m.restricted {
		if strings.Contains(lowered, term) {
			return rejected(ReasonRestricted)
		}
		if file != nil && strings.Contains(strings.ToLower(file.OriginalName), term) {
			return rejected(ReasonRestricted)
		}
	}

	if urlPattern.MatchString(text) {
		return rejected(ReasonLink)
	}

	if file != nil {
		if v := m.CheckFile(file); !v.Allowed {
			return v
		}
	}

	if strings.TrimSpace(text) == "" && file == nil {
		return rejected(ReasonEmpty)
	}
	return allowed()
}

// CheckFile validates only the file metadata rules. The upload endpoint
// shares this so the HTTP and websocket paths enforce one allow-list.
func (m *Moderator) CheckFile(file *models.FileAttachment) Verdict {
	if _, ok := m.allowedMIME[strings.ToLower(file.MimeType)]; !ok {
		return rejected(ReasonUnsupportedFile)
	}
	if file.Size > m.maxFileBytes {
		return rejected(ReasonFileTooLarge)
	}
	return allowed()
}

// tokenize splits text on anything that is not a letter or digit, so the
// profanity check matches whole words only.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z':
			return false
		case r >= '0' && r <= '9':
			return false
		}
		return true
	})
}
