package domain

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Entity kinds stored in the entity store.
const (
	KindProfile    = "Profile"
	KindConference = "Conference"
	KindSession    = "Session"
)

// Key identifies an entity by its full ancestor path. A key has either a
// string Name (profiles) or a numeric ID (conferences, sessions), never both.
type Key struct {
	Parent *Key
	Kind   string
	ID     int64
	Name   string
}

// NewProfileKey returns the key of the profile owned by userID.
func NewProfileKey(userID string) *Key {
	return &Key{Kind: KindProfile, Name: userID}
}

// NewConferenceKey returns the key of a conference organized by organizerID.
func NewConferenceKey(organizerID string, id int64) *Key {
	return &Key{Parent: NewProfileKey(organizerID), Kind: KindConference, ID: id}
}

// NewSessionKey returns the key of a session scoped under its conference.
func NewSessionKey(conference *Key, id int64) *Key {
	return &Key{Parent: conference, Kind: KindSession, ID: id}
}

// Root returns the top-most ancestor of k.
func (k *Key) Root() *Key {
	for k.Parent != nil {
		k = k.Parent
	}
	return k
}

// HasAncestor reports whether ancestor is a strict ancestor of k.
func (k *Key) HasAncestor(ancestor *Key) bool {
	for p := k.Parent; p != nil; p = p.Parent {
		if p.Equal(ancestor) {
			return true
		}
	}
	return false
}

// Equal reports whether both keys describe the same path.
func (k *Key) Equal(o *Key) bool {
	if k == nil || o == nil {
		return k == o
	}
	return k.path() == o.path()
}

func (k *Key) String() string {
	if k == nil {
		return ""
	}
	return k.path()
}

// path renders k as Kind:s<name> or Kind:i<id> segments joined by "/".
// Names are path-escaped so user ids containing "/" stay one segment.
func (k *Key) path() string {
	var segs []string
	for c := k; c != nil; c = c.Parent {
		id := "s" + url.PathEscape(c.Name)
		if c.Name == "" {
			id = "i" + strconv.FormatInt(c.ID, 10)
		}
		segs = append(segs, c.Kind+":"+id)
	}
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return strings.Join(segs, "/")
}

// Encode returns the websafe representation of k.
func (k *Key) Encode() string {
	return base64.RawURLEncoding.EncodeToString([]byte(k.path()))
}

// DecodeKey parses a websafe key produced by Key.Encode.
func DecodeKey(websafe string) (*Key, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(websafe))
	if err != nil || len(raw) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, websafe)
	}
	var key *Key
	for _, seg := range strings.Split(string(raw), "/") {
		kind, id, ok := strings.Cut(seg, ":")
		if !ok || kind == "" || len(id) < 2 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidKey, websafe)
		}
		next := &Key{Parent: key, Kind: kind}
		switch id[0] {
		case 's':
			name, err := url.PathUnescape(id[1:])
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidKey, websafe)
			}
			next.Name = name
		case 'i':
			n, err := strconv.ParseInt(id[1:], 10, 64)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("%w: %q", ErrInvalidKey, websafe)
			}
			next.ID = n
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidKey, websafe)
		}
		key = next
	}
	return key, nil
}

// DecodeKind decodes websafe and checks that it names an entity of kind.
func DecodeKind(websafe, kind string) (*Key, error) {
	k, err := DecodeKey(websafe)
	if err != nil {
		return nil, err
	}
	if k.Kind != kind {
		return nil, fmt.Errorf("%w: expected %s key, got %s", ErrInvalidKey, kind, k.Kind)
	}
	return k, nil
}

// DecodeProfileKey decodes websafe and checks that it names a profile.
// Profiles are root entities, so a key with a parent is rejected.
func DecodeProfileKey(websafe string) (*Key, error) {
	k, err := DecodeKind(websafe, KindProfile)
	if err != nil {
		return nil, err
	}
	if k.Parent != nil {
		return nil, fmt.Errorf("%w: profile key must not have a parent", ErrInvalidKey)
	}
	return k, nil
}
