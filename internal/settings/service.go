package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrSettingNotFound signals the key has no stored value.
var ErrSettingNotFound = errors.New("setting not found")

// ErrInvalidSetting signals a bad key or non-JSON value.
var ErrInvalidSetting = errors.New("invalid setting")

type settingStore interface {
	Get(ctx context.Context, key string) (Setting, error)
	Put(ctx context.Context, key string, value json.RawMessage) (Setting, error)
	List(ctx context.Context) ([]Setting, error)
}

// Service manages site settings.
type Service struct {
	repo settingStore
}

// NewService constructs a settings service.
func NewService(repo settingStore) *Service {
	return &Service{repo: repo}
}

// Get returns the stored setting for a key.
func (s *Service) Get(ctx context.Context, key string) (Setting, error) {
	return s.repo.Get(ctx, key)
}

// Put validates and stores a setting value.
func (s *Service) Put(ctx context.Context, key string, value json.RawMessage) (Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Setting{}, fmt.Errorf("%w: key is required", ErrInvalidSetting)
	}
	if !json.Valid(value) {
		return Setting{}, fmt.Errorf("%w: value must be valid JSON", ErrInvalidSetting)
	}
	return s.repo.Put(ctx, key, value)
}

// List returns every stored setting.
func (s *Service) List(ctx context.Context) ([]Setting, error) {
	return s.repo.List(ctx)
}

// GetAssetLinks reads a setting expected to hold a list of linked assets and
// normalizes every entry into the AssetLink shape.
func (s *Service) GetAssetLinks(ctx context.Context, key string) ([]AssetLink, error) {
	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return NormalizeAssetLinks(setting.Value)
}

// NormalizeAssetLinks decodes a JSON list whose entries may be bare URL
// strings (legacy records) or structured objects, producing one tagged shape.
// Missing Active defaults to true so legacy links stay visible.
func NormalizeAssetLinks(raw json.RawMessage) ([]AssetLink, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: expected a JSON list", ErrInvalidSetting)
	}

	links := make([]AssetLink, 0, len(entries))
	for _, entry := range entries {
		var url string
		if err := json.Unmarshal(entry, &url); err == nil {
			links = append(links, AssetLink{URL: url, Active: true})
			continue
		}

		var link struct {
			URL    string `json:"url"`
			Icon   string `json:"icon"`
			Active *bool  `json:"active"`
			Label  string `json:"label"`
		}
		if err := json.Unmarshal(entry, &link); err != nil {
			return nil, fmt.Errorf("%w: entry is neither a string nor an object", ErrInvalidSetting)
		}

		active := true
		if link.Active != nil {
			active = *link.Active
		}
		links = append(links, AssetLink{
			URL:    link.URL,
			Icon:   link.Icon,
			Active: active,
			Label:  link.Label,
		})
	}

	return links, nil
}
