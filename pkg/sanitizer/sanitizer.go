package sanitizer

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reControlChars = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	reMultiSpace   = regexp.MustCompile(`[ \t]+`)
	reMultiNewline = regexp.MustCompile(`\n{3,}`)

	// Regions tried when a meeting phone arrives without a country prefix.
	fallbackRegions = []string{"US", "GB"}
)

func trim(s string) string {
	return strings.TrimSpace(s)
}

func stripControl(s string) string {
	return reControlChars.ReplaceAllString(s, "")
}

func collapseWhitespace(s string) string {
	s = reMultiSpace.ReplaceAllString(s, " ")
	return reMultiNewline.ReplaceAllString(s, "\n\n")
}

// SanitizeFreeText cleans user-supplied notes and cancellation reasons:
// control characters removed, runs of whitespace collapsed, edges trimmed.
// Length limits are the validator's job, not this package's.
func SanitizeFreeText(input string) string {
	p := Pipeline{
		stripControl,
		collapseWhitespace,
		trim,
	}
	return p.Apply(input)
}

// SanitizeAddress normalizes a physical meeting address to a single trimmed line.
func SanitizeAddress(input string) string {
	p := Pipeline{
		stripControl,
		func(s string) string { return strings.ReplaceAll(s, "\n", ", ") },
		collapseWhitespace,
		trim,
	}
	return p.Apply(input)
}

// SanitizePhone normalizes a meeting phone to E.164. Inputs that cannot be
// parsed in any supported region come back empty rather than stored dirty.
func SanitizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	if strings.HasPrefix(phone, "+") {
		if parsed, err := phonenumbers.Parse(phone, ""); err == nil {
			return phonenumbers.Format(parsed, phonenumbers.E164)
		}
	}

	for _, region := range fallbackRegions {
		if parsed, err := phonenumbers.Parse(phone, region); err == nil {
			return phonenumbers.Format(parsed, phonenumbers.E164)
		}
	}
	return ""
}

// SanitizeURL normalizes a virtual-meeting link: https scheme enforced,
// host lowercased, tracking parameters dropped. Unparseable input comes back
// empty.
func SanitizeURL(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}

	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return ""
	}

	u.Scheme = "https"
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimSuffix(strings.TrimSpace(u.Path), "/")

	q := u.Query()
	qClean := url.Values{}
	for k, v := range q {
		key := strings.TrimSpace(strings.ToLower(k))
		if strings.HasPrefix(key, "utm_") {
			continue
		}
		for _, val := range v {
			value := strings.TrimSpace(val)
			if value != "" {
				qClean.Add(key, value)
			}
		}
	}
	u.RawQuery = qClean.Encode()

	return u.String()
}
