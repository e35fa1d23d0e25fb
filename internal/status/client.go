package status

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"codeberg.org/mutker/mcwatch/internal/errors"
	"codeberg.org/mutker/mcwatch/internal/logger"
)

const (
	DefaultStatusAPI = "https://api.mcstatus.io"
	DefaultGeoAPI    = "http://ip-api.com"

	defaultTimeout  = 10 * time.Second
	locationTTL     = time.Hour
	maxResponseSize = 1 << 20
)

type Options struct {
	Timeout   time.Duration
	StatusAPI string
	GeoAPI    string
}

// Client talks to the status and geolocation APIs.
type Client struct {
	http      *http.Client
	statusAPI string
	geoAPI    string
	log       logger.Logger
	now       func() time.Time

	mu        sync.Mutex
	locations map[string]cachedLocation
}

type cachedLocation struct {
	location  *Location
	expiresAt time.Time
}

type statusPayload struct {
	Online  *bool `json:"online"`
	Version *struct {
		NameRaw   string `json:"name_raw"`
		NameClean string `json:"name_clean"`
	} `json:"version"`
	Players *struct {
		Online int `json:"online"`
		Max    int `json:"max"`
		List   []struct {
			NameClean string `json:"name_clean"`
		} `json:"list"`
	} `json:"players"`
	MOTD *struct {
		Clean string `json:"clean"`
	} `json:"motd"`
}

type geoPayload struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Country string `json:"country"`
	City    string `json:"city"`
	ISP     string `json:"isp"`
}

func NewClient(opts Options, log logger.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.StatusAPI == "" {
		opts.StatusAPI = DefaultStatusAPI
	}
	if opts.GeoAPI == "" {
		opts.GeoAPI = DefaultGeoAPI
	}

	return &Client{
		http:      &http.Client{Timeout: opts.Timeout},
		statusAPI: strings.TrimRight(opts.StatusAPI, "/"),
		geoAPI:    strings.TrimRight(opts.GeoAPI, "/"),
		log:       log,
		now:       time.Now,
		locations: make(map[string]cachedLocation),
	}
}

// Check fetches the server status. An unreachable server, or one the API
// does not know, is reported offline rather than as an error. A response
// that cannot describe the server yields ErrInvalidResponse.
func (c *Client) Check(ctx context.Context, address string) (*Status, error) {
	errFactory := errors.New()

	host, port, err := SplitAddress(address)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v2/status/java/%s", c.statusAPI, net.JoinHostPort(host, port))
	offline := &Status{Address: address}

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, errFactory.Wrap(ErrCheckFailed, err)
		}
		c.log.Warn().
			Err(err).
			Str("address", address).
			Msg("Status API unreachable, treating server as offline")
		return offline, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return offline, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn().
			Int("status_code", resp.StatusCode).
			Str("address", address).
			Msg("Status API error, treating server as offline")
		return offline, nil
	}

	var payload statusPayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&payload); err != nil {
		return nil, errFactory.WithData(ErrInvalidResponse, struct {
			Phase string
			Error string
		}{
			Phase: "decode_status",
			Error: err.Error(),
		})
	}

	return payload.status(address)
}

func (p statusPayload) status(address string) (*Status, error) {
	if p.Online == nil {
		return nil, errors.New().WithMessage(ErrInvalidResponse, "status response has no online flag")
	}

	s := &Status{Address: address, Online: *p.Online}
	if !s.Online {
		return s, nil
	}

	if p.Players != nil {
		if p.Players.Online < 0 || p.Players.Max < 0 {
			return nil, errors.New().WithData(ErrInvalidResponse, struct {
				Online int
				Max    int
			}{p.Players.Online, p.Players.Max})
		}
		s.PlayersOnline = p.Players.Online
		s.PlayersMax = p.Players.Max

		names := make([]string, 0, len(p.Players.List))
		for _, player := range p.Players.List {
			names = append(names, player.NameClean)
		}
		s.GameModes = cleanGameModes(names)
	}
	if p.Version != nil {
		s.Version = p.Version.NameRaw
	}
	if p.MOTD != nil {
		s.MOTD = strings.TrimSpace(p.MOTD.Clean)
	}

	return s, nil
}

// Locate looks up where host is hosted. Results are cached for an hour.
func (c *Client) Locate(ctx context.Context, address string) (*Location, error) {
	errFactory := errors.New()

	host, _, err := SplitAddress(address)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	cached, ok := c.locations[host]
	c.mu.Unlock()
	if ok && c.now().Before(cached.expiresAt) {
		return cached.location, nil
	}

	resp, err := c.get(ctx, c.geoAPI+"/json/"+url.PathEscape(host))
	if err != nil {
		return nil, errFactory.Wrap(ErrLocateFailed, err)
	}
	defer resp.Body.Close()

	var payload geoPayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&payload); err != nil {
		return nil, errFactory.Wrap(ErrLocateFailed, err)
	}
	if payload.Status != "success" {
		return nil, errFactory.WithData(ErrLocateFailed, struct {
			Host    string
			Status  string
			Message string
		}{host, payload.Status, payload.Message})
	}

	location := &Location{
		Country: payload.Country,
		City:    payload.City,
		ISP:     payload.ISP,
	}

	c.mu.Lock()
	c.locations[host] = cachedLocation{location: location, expiresAt: c.now().Add(locationTTL)}
	c.mu.Unlock()

	return location, nil
}

// IconURL returns the URL of the server's favicon.
func (c *Client) IconURL(address string) string {
	host, _, err := SplitAddress(address)
	if err != nil {
		return ""
	}
	return c.statusAPI + "/v2/icon/" + url.PathEscape(host)
}

func (c *Client) get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "mcwatch")
	return c.http.Do(req)
}
