package livechannel

import (
	"errors"
	"fmt"

	"github.com/Beka01247/shopbuilder/internal/domain"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Kind string

const KindConfigUpdate Kind = "CONFIG_UPDATE"

// ErrUnknownMessage marks envelopes that are not part of the protocol.
// Receivers drop them silently.
var ErrUnknownMessage = errors.New("unknown live message")

// Message is the closed set of messages the live channel carries.
type Message interface {
	Kind() Kind
	sealed()
}

// ConfigUpdate carries the complete latest configuration; receivers replace, never merge.
type ConfigUpdate struct {
	Config domain.Configuration
}

func (ConfigUpdate) Kind() Kind { return KindConfigUpdate }
func (ConfigUpdate) sealed()    {}

type envelope struct {
	Type   Kind                `json:"type"`
	Config jsoniter.RawMessage `json:"config,omitempty"`
}

func Encode(msg Message) ([]byte, error) {
	switch m := msg.(type) {
	case ConfigUpdate:
		cfg, err := json.Marshal(m.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to encode config update: %w", err)
		}
		return json.Marshal(envelope{Type: KindConfigUpdate, Config: cfg})
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownMessage, msg)
	}
}

// Decode checks only the type tag. Anything that is not a known envelope
// returns ErrUnknownMessage.
func Decode(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, ErrUnknownMessage
	}

	switch env.Type {
	case KindConfigUpdate:
		cfg, err := domain.ParseConfiguration(env.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to decode config update: %w", err)
		}
		return ConfigUpdate{Config: cfg}, nil
	default:
		return nil, ErrUnknownMessage
	}
}

// Topic is the routing topic for live updates of one storefront key. Keys
// outside the slug alphabet are refused so they cannot widen a topic binding.
func Topic(key string) (string, error) {
	if !domain.ValidSlug(key) {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidSlug, key)
	}
	return "config.updates." + key, nil
}
