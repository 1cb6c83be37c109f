// Package ice builds the STUN/TURN server list handed to browsers before
// they create their RTCPeerConnection.
package ice

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pion/stun/v3"
	"github.com/pion/webrtc/v4"
)

// DefaultSTUN is used when nothing else is configured.
const DefaultSTUN = "stun:stun.l.google.com:19302"

var (
	ErrNoURLs         = errors.New("ice server has no urls")
	ErrMissingSecrets = errors.New("turn server requires username and credential")
)

// Options lists the ways an operator can describe ICE servers. A non-empty
// JSON list replaces the STUN/TURN fields.
type Options struct {
	STUN     string
	TURN     string // host name, ports are added
	TURNUser string
	TURNPass string
	JSON     string
}

// Servers resolves opts into a validated server list.
func Servers(opts Options) ([]webrtc.ICEServer, error) {
	var servers []webrtc.ICEServer

	if opts.JSON != "" {
		parsed, err := parseJSON(opts.JSON)
		if err != nil {
			return nil, err
		}
		servers = parsed
	} else {
		if opts.STUN != "" {
			servers = append(servers, webrtc.ICEServer{URLs: []string{opts.STUN}})
		}
		if opts.TURN != "" {
			servers = append(servers, webrtc.ICEServer{
				URLs: []string{
					fmt.Sprintf("turn:%s:3478?transport=udp", opts.TURN),
					fmt.Sprintf("turn:%s:3478?transport=tcp", opts.TURN),
					fmt.Sprintf("turns:%s:5349?transport=tcp", opts.TURN),
				},
				Username:   opts.TURNUser,
				Credential: opts.TURNPass,
			})
		}
	}

	if err := Validate(servers); err != nil {
		return nil, err
	}
	return servers, nil
}

// Validate checks that every URL parses as a STUN/TURN URI and that TURN
// entries carry credentials.
func Validate(servers []webrtc.ICEServer) error {
	for i, s := range servers {
		if len(s.URLs) == 0 {
			return fmt.Errorf("ice server %d: %w", i, ErrNoURLs)
		}
		for _, raw := range s.URLs {
			uri, err := stun.ParseURI(raw)
			if err != nil {
				return fmt.Errorf("ice server %d: parse %q: %w", i, raw, err)
			}
			if uri.Scheme == stun.SchemeTypeTURN || uri.Scheme == stun.SchemeTypeTURNS {
				if s.Username == "" || credential(s) == "" {
					return fmt.Errorf("ice server %d: %q: %w", i, raw, ErrMissingSecrets)
				}
			}
		}
	}
	return nil
}

func credential(s webrtc.ICEServer) string {
	c, _ := s.Credential.(string)
	return c
}

// rawServer mirrors RTCIceServer as browsers write it: urls may be a single
// string or a list.
type rawServer struct {
	URLs       json.RawMessage `json:"urls"`
	Username   string          `json:"username"`
	Credential string          `json:"credential"`
}

func parseJSON(s string) ([]webrtc.ICEServer, error) {
	var raws []rawServer
	if err := json.Unmarshal([]byte(s), &raws); err != nil {
		return nil, fmt.Errorf("parse ice servers: %w", err)
	}

	servers := make([]webrtc.ICEServer, 0, len(raws))
	for i, r := range raws {
		urls, err := parseURLs(r.URLs)
		if err != nil {
			return nil, fmt.Errorf("ice server %d: %w", i, err)
		}
		server := webrtc.ICEServer{URLs: urls, Username: r.Username}
		if r.Credential != "" {
			server.Credential = r.Credential
		}
		servers = append(servers, server)
	}
	return servers, nil
}

func parseURLs(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, ErrNoURLs
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		return []string{one}, nil
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, fmt.Errorf("urls must be a string or a list of strings: %w", err)
	}
	return many, nil
}
