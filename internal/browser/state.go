package browser

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/cristhianchimbo50/sri-extractor/internal/fileutils"

	"github.com/go-rod/rod/lib/proto"
)

// StorageState is a saved browser session: cookies plus the local storage of
// each visited origin. The layout matches the storage-state files written by
// Playwright, so sessions can be exchanged with tools that use that format.
type StorageState struct {
	Cookies []Cookie `json:"cookies"`
	Origins []Origin `json:"origins"`
}

// Cookie is one browser cookie. Expires is seconds since the epoch, or -1
// for a session cookie.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// Origin holds the local storage entries of one origin.
type Origin struct {
	Origin       string      `json:"origin"`
	LocalStorage []NameValue `json:"localStorage"`
}

// NameValue is a single local storage entry.
type NameValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// LoadState reads a storage-state file.
func LoadState(path string) (StorageState, error) {
	var state StorageState
	data, err := os.ReadFile(path)
	if err != nil {
		return state, fmt.Errorf("failed to read session state: %w", err)
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return state, fmt.Errorf("failed to parse session state %s: %w", path, err)
	}
	return state, nil
}

// Save writes the state to path atomically.
func (s StorageState) Save(path string) error {
	if s.Cookies == nil {
		s.Cookies = []Cookie{}
	}
	if s.Origins == nil {
		s.Origins = []Origin{}
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize session state: %w", err)
	}
	return fileutils.WriteFileAtomic(path, data, 0600)
}

// SetOrigin replaces the local storage recorded for origin. Entries are
// stored sorted by name.
func (s *StorageState) SetOrigin(origin string, items map[string]string) {
	if origin == "" || origin == "null" {
		return
	}
	entries := make([]NameValue, 0, len(items))
	for k, v := range items {
		entries = append(entries, NameValue{Name: k, Value: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	for i := range s.Origins {
		if s.Origins[i].Origin == origin {
			s.Origins[i].LocalStorage = entries
			return
		}
	}
	s.Origins = append(s.Origins, Origin{Origin: origin, LocalStorage: entries})
}

// CookieParams converts the saved cookies for Browser.SetCookies.
func (s StorageState) CookieParams() []*proto.NetworkCookieParam {
	params := make([]*proto.NetworkCookieParam, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		p := &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: proto.NetworkCookieSameSite(c.SameSite),
		}
		if c.Expires > 0 {
			p.Expires = proto.TimeSinceEpoch(c.Expires)
		}
		params = append(params, p)
	}
	return params
}

func cookiesFromProto(cookies []*proto.NetworkCookie) []Cookie {
	out := make([]Cookie, 0, len(cookies))
	for _, c := range cookies {
		expires := float64(c.Expires)
		if c.Session {
			expires = -1
		}
		out = append(out, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		})
	}
	return out
}

// LocalStorageScript returns a script that, evaluated at document creation,
// restores the saved local storage of the document's origin. It returns ""
// when nothing was saved.
func (s StorageState) LocalStorageScript() (string, error) {
	byOrigin := map[string]map[string]string{}
	for _, o := range s.Origins {
		if len(o.LocalStorage) == 0 {
			continue
		}
		items := map[string]string{}
		for _, nv := range o.LocalStorage {
			items[nv.Name] = nv.Value
		}
		byOrigin[o.Origin] = items
	}
	if len(byOrigin) == 0 {
		return "", nil
	}

	data, err := json.Marshal(byOrigin)
	if err != nil {
		return "", fmt.Errorf("failed to encode local storage: %w", err)
	}
	return fmt.Sprintf(restoreLocalStorageJS, data), nil
}

const restoreLocalStorageJS = `(() => {
  const saved = %s;
  const items = saved[location.origin];
  if (!items) return;
  for (const [k, v] of Object.entries(items)) {
    try { localStorage.setItem(k, v); } catch (e) {}
  }
})();`

const readLocalStorageJS = `() => {
  const items = {};
  try {
    for (let i = 0; i < localStorage.length; i++) {
      const k = localStorage.key(i);
      items[k] = localStorage.getItem(k);
    }
  } catch (e) {}
  return JSON.stringify({ origin: location.origin, items });
}`
