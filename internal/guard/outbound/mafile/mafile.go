// Package mafile manages the on-disk registry of imported Steam Guard
// account files (maFiles) and the manifest that indexes them.
package mafile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"

	"steamvault/internal/guard/entity"
	"steamvault/internal/pkg/goerror"
	"steamvault/internal/pkg/secretbox"
)

const manifestFilename = "manifest.json"

// Exporters emit SteamID and SessionID as bare JSON numbers larger than the
// float64-exact range, which a plain decode silently corrupts. These quote
// them before decoding.
var (
	reBigSteamID   = regexp.MustCompile(`("SteamID"\s*:\s*)(\d{16,})`)
	reBigSessionID = regexp.MustCompile(`("SessionID"\s*:\s*)(\d{8,})`)
)

type manifest struct {
	Entries []manifestEntry `json:"entries"`
}

type manifestEntry struct {
	Filename  string `json:"filename"`
	SteamID   string `json:"steamid"`
	Encrypted bool   `json:"encrypted"`
}

type maFileSession struct {
	SteamID          string `json:"SteamID"`
	SessionID        string `json:"SessionID"`
	SteamLoginSecure string `json:"SteamLoginSecure"`
	AccessToken      string `json:"AccessToken"`
	RefreshToken     string `json:"RefreshToken"`
}

type maFile struct {
	AccountName    string         `json:"account_name"`
	SharedSecret   string         `json:"shared_secret"`
	IdentitySecret string         `json:"identity_secret"`
	DeviceID       string         `json:"device_id"`
	Session        *maFileSession `json:"Session"`
}

// deviceIDDeriver fills in a device id for maFiles imported without one.
type deviceIDDeriver interface {
	DeviceID(steamID string) string
}

// Registry loads, imports, and serves maFile account records. Files are
// sealed at rest when a Sealer is configured.
type Registry struct {
	dir     string
	sealer  secretbox.Sealer
	deriver deviceIDDeriver

	mu       sync.RWMutex
	accounts map[string]entity.Account
	sessions map[string]entity.Session
}

// NewRegistry builds a registry over dir. Pass a nil sealer to keep files in
// plaintext.
func NewRegistry(dir string, sealer secretbox.Sealer, deriver deviceIDDeriver) *Registry {
	return &Registry{
		dir:      dir,
		sealer:   sealer,
		deriver:  deriver,
		accounts: make(map[string]entity.Account),
		sessions: make(map[string]entity.Session),
	}
}

// Load reads the manifest and every account file it references. A missing
// manifest is an empty registry, not an error.
func (r *Registry) Load(ctx context.Context) error {
	mf, err := r.readManifest()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, entry := range mf.Entries {
		raw, err := os.ReadFile(filepath.Join(r.dir, entry.Filename))
		if err != nil {
			return fmt.Errorf("mafile: reading %s: %w", entry.Filename, err)
		}

		if entry.Encrypted {
			if r.sealer == nil {
				return fmt.Errorf("mafile: %s is sealed but no key is configured", entry.Filename)
			}
			raw, err = r.sealer.Open(raw, entry.SteamID)
			if err != nil {
				return fmt.Errorf("mafile: opening %s: %w", entry.Filename, err)
			}
		}

		account, session, err := r.decode(raw, entry.Encrypted)
		if err != nil {
			return fmt.Errorf("mafile: decoding %s: %w", entry.Filename, err)
		}

		r.accounts[account.SteamID] = *account
		if session != nil {
			r.sessions[account.SteamID] = *session
		}
	}

	return nil
}

// Import parses a raw maFile, writes it into the data dir, and registers the
// account. The session embedded in the file, if any, is returned so the
// caller can seed the session store.
func (r *Registry) Import(ctx context.Context, raw []byte) (*entity.Account, *entity.Session, error) {
	sealed := r.sealer != nil

	account, session, err := r.decode(raw, sealed)
	if err != nil {
		return nil, nil, err
	}

	out := raw
	if sealed {
		out, err = r.sealer.Seal(raw, account.SteamID)
		if err != nil {
			return nil, nil, fmt.Errorf("mafile: sealing: %w", err)
		}
	}

	filename := account.SteamID + ".maFile"

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.dir, 0o700); err != nil {
		return nil, nil, err
	}
	if err := os.WriteFile(filepath.Join(r.dir, filename), out, 0o600); err != nil {
		return nil, nil, err
	}

	mf, err := r.readManifest()
	if err != nil {
		return nil, nil, err
	}

	found := false
	for i := range mf.Entries {
		if mf.Entries[i].SteamID == account.SteamID {
			mf.Entries[i] = manifestEntry{Filename: filename, SteamID: account.SteamID, Encrypted: sealed}
			found = true
			break
		}
	}
	if !found {
		mf.Entries = append(mf.Entries, manifestEntry{Filename: filename, SteamID: account.SteamID, Encrypted: sealed})
	}

	if err := r.writeManifest(mf); err != nil {
		return nil, nil, err
	}

	r.accounts[account.SteamID] = *account
	if session != nil {
		r.sessions[account.SteamID] = *session
	}

	return account, session, nil
}

// List returns every registered account ordered by steamid.
func (r *Registry) List(_ context.Context) ([]entity.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	accounts := make([]entity.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].SteamID < accounts[j].SteamID })

	return accounts, nil
}

// Get returns the account for steamID or goerror.ErrNotFound.
func (r *Registry) Get(_ context.Context, steamID string) (*entity.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[steamID]
	if !ok {
		return nil, goerror.ErrNotFound
	}

	return &account, nil
}

// Sessions returns the sessions embedded in loaded maFiles, keyed by
// steamid, so the caller can seed the session store at startup.
func (r *Registry) Sessions(_ context.Context) (map[string]entity.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make(map[string]entity.Session, len(r.sessions))
	for id, sess := range r.sessions {
		sessions[id] = sess
	}

	return sessions, nil
}

// decode parses maFile JSON, quoting oversized numeric ids first so they
// survive the round trip through float64.
func (r *Registry) decode(raw []byte, sealed bool) (*entity.Account, *entity.Session, error) {
	quoted := reBigSteamID.ReplaceAll(raw, []byte(`$1"$2"`))
	quoted = reBigSessionID.ReplaceAll(quoted, []byte(`$1"$2"`))

	var mf maFile
	if err := json.Unmarshal(quoted, &mf); err != nil {
		return nil, nil, goerror.NewInvalidFormat("account file is not valid maFile JSON")
	}

	if mf.Session == nil || mf.Session.SteamID == "" {
		return nil, nil, goerror.NewInvalidFormat("account file is missing the steamid")
	}

	deviceID := mf.DeviceID
	if deviceID == "" && r.deriver != nil {
		deviceID = r.deriver.DeviceID(mf.Session.SteamID)
	}

	account := &entity.Account{
		SteamID:        mf.Session.SteamID,
		AccountName:    mf.AccountName,
		SharedSecret:   mf.SharedSecret,
		IdentitySecret: mf.IdentitySecret,
		DeviceID:       deviceID,
		Sealed:         sealed,
	}

	accessToken := mf.Session.SteamLoginSecure
	if accessToken == "" {
		accessToken = mf.Session.AccessToken
	}

	var session *entity.Session
	if mf.Session.SessionID != "" && accessToken != "" {
		session = &entity.Session{
			SessionID:    mf.Session.SessionID,
			AccessToken:  accessToken,
			RefreshToken: mf.Session.RefreshToken,
		}
	}

	return account, session, nil
}

func (r *Registry) readManifest() (*manifest, error) {
	raw, err := os.ReadFile(filepath.Join(r.dir, manifestFilename))
	if errors.Is(err, os.ErrNotExist) {
		return &manifest{}, nil
	}
	if err != nil {
		return nil, err
	}

	var mf manifest
	if err := json.Unmarshal(raw, &mf); err != nil {
		return nil, fmt.Errorf("mafile: manifest is corrupt: %w", err)
	}

	return &mf, nil
}

func (r *Registry) writeManifest(mf *manifest) error {
	raw, err := json.MarshalIndent(mf, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(r.dir, manifestFilename), raw, 0o600)
}
