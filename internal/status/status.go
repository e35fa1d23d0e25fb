// Package status queries the public status of a Minecraft Java server.
package status

import (
	"net"
	"strings"
	"unicode"

	"codeberg.org/mutker/mcwatch/internal/errors"
	"codeberg.org/mutker/mcwatch/internal/stats"
)

const DefaultPort = "25565"

// Status is the observed state of the server at one point in time.
type Status struct {
	Address       string
	Online        bool
	PlayersOnline int
	PlayersMax    int
	Version       string
	MOTD          string
	// Cleaned names of listed players that carry a number, which servers
	// use to advertise game modes.
	GameModes []string
}

// Sample converts the status into the tracker's input.
func (s *Status) Sample() stats.Sample {
	if !s.Online {
		return stats.Sample{Online: false}
	}
	return stats.Sample{Online: true, Load: s.PlayersOnline}
}

// Location describes where the server is hosted.
type Location struct {
	Country string
	City    string
	ISP     string
}

const (
	UnknownLocation = "Unknown Location"
	unknownCity     = "Unknown City"
	unknownISP      = "Unknown ISP"
)

func (l *Location) String() string {
	if l == nil || l.Country == "" {
		return UnknownLocation
	}
	city := l.City
	if city == "" {
		city = unknownCity
	}
	return l.Country + " - " + city
}

// Provider returns the hosting ISP.
func (l *Location) Provider() string {
	if l == nil || l.ISP == "" {
		return unknownISP
	}
	return l.ISP
}

// SplitAddress splits "host[:port]" and applies the default port.
func SplitAddress(address string) (host, port string, err error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", "", errors.New().New(ErrInvalidAddress)
	}

	host, port, err = net.SplitHostPort(address)
	if err != nil {
		// no port given
		host, port = address, DefaultPort
	}
	if host == "" || port == "" {
		return "", "", errors.New().WithData(ErrInvalidAddress, struct{ Address string }{address})
	}
	return host, port, nil
}

func cleanGameModes(names []string) []string {
	var modes []string
	for _, name := range names {
		if !strings.ContainsFunc(name, unicode.IsDigit) {
			continue
		}
		cleaned := strings.TrimSpace(strings.Map(dropPictographs, name))
		if cleaned == "" || strings.Contains(strings.ToLower(cleaned), "discord") {
			continue
		}
		modes = append(modes, cleaned)
	}
	return modes
}

func dropPictographs(r rune) rune {
	switch {
	case r == '\uFE0F', r == '\u200D':
		return -1
	case unicode.Is(unicode.So, r):
		return -1
	case unicode.Is(unicode.Sk, r) && r > unicode.MaxLatin1:
		// emoji skin tone modifiers
		return -1
	}
	return r
}
