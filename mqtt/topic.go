package mqtt

import (
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	dot          = rune('.')
	slash        = rune('/')
	star         = rune('*')
	plus         = rune('+')
	hash         = rune('#')
	gt           = rune('>')
	matchSegment = `[^/]*`
	matchRest    = `.*`
)

// FilterToRegexp compiles the given MQTT topic filter into an anchored regular expression that
// matches the topic names that the filter matches.
func FilterToRegexp(s string) *regexp.Regexp {
	w := strings.Builder{}
	_ = w.WriteByte('^')
	for i, p := range strings.Split(s, "/") {
		if len(p) == 1 {
			switch rune(p[0]) {
			case plus:
				if i > 0 {
					_ = w.WriteByte('/')
				}
				_, _ = w.WriteString(matchSegment)
				continue
			case hash:
				// "a/#" also matches "a"
				if i > 0 {
					_, _ = w.WriteString(`(/` + matchRest + `)?`)
				} else {
					_, _ = w.WriteString(matchRest)
				}
				continue
			}
		}
		if i > 0 {
			_ = w.WriteByte('/')
		}
		_, _ = w.WriteString(regexp.QuoteMeta(p))
	}
	_ = w.WriteByte('$')
	return regexp.MustCompile(w.String())
}

// ValidTopicName returns true if the given string can be used as the topic name of a PUBLISH
// packet, i.e. it is non empty, valid UTF-8, and contains no wildcards or NUL characters.
func ValidTopicName(s string) bool {
	return len(s) > 0 && utf8.ValidString(s) && !strings.ContainsAny(s, "+#\x00")
}

// ValidTopicFilter returns true if the given string can be used as a topic filter in a
// SUBSCRIBE or UNSUBSCRIBE packet. Wildcards must occupy an entire level and '#' must be last.
func ValidTopicFilter(s string) bool {
	if len(s) == 0 || !utf8.ValidString(s) || strings.IndexByte(s, 0) >= 0 {
		return false
	}
	ps := strings.Split(s, "/")
	last := len(ps) - 1
	for i, p := range ps {
		if strings.ContainsAny(p, "+#") {
			if len(p) != 1 || (p[0] == '#' && i != last) {
				return false
			}
		}
	}
	return true
}

// ToNATS converts an MQTT topic to a NATS subject. The following conversions take place
//
// dots become slashes
// slashes become dots
func ToNATS(mqttTopic string) string {
	r := strings.NewReader(mqttTopic)
	w := strings.Builder{}
	for {
		c, _, err := r.ReadRune()
		if err == io.EOF {
			return w.String()
		}
		switch c {
		case dot:
			c = slash
		case slash:
			c = dot
		}
		_, _ = w.WriteRune(c)
	}
}

// ToNATSSubscription converts the given MQTT subscription into a NATS subscription
func ToNATSSubscription(mqttSub string) string {
	r := strings.NewReader(mqttSub)
	w := strings.Builder{}
	for {
		c, _, err := r.ReadRune()
		if err == io.EOF {
			return w.String()
		}
		switch c {
		case dot:
			c = slash
		case slash:
			c = dot
		case star:
			c = plus
		case plus:
			c = star
		case hash:
			c = gt
		case gt:
			c = hash
		}
		_, _ = w.WriteRune(c)
	}
}
