package ragchat

import "fmt"

// CredentialKey is the fixed store key under which the API key is persisted.
const CredentialKey = "apiKey"

// KeyValueStore is a minimal persistent string store.
// Get reports ok=false when the key is absent.
type KeyValueStore interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

// LoadCredential returns the persisted API key, or "" when none is stored.
func LoadCredential(store KeyValueStore) (string, error) {
	v, ok, err := store.Get(CredentialKey)
	if err != nil {
		return "", fmt.Errorf("load credential: %w", err)
	}
	if !ok {
		return "", nil
	}
	return v, nil
}

// SaveCredential persists key, or removes the stored entry when key is empty.
func SaveCredential(store KeyValueStore, key string) error {
	if key == "" {
		if err := store.Remove(CredentialKey); err != nil {
			return fmt.Errorf("remove credential: %w", err)
		}
		return nil
	}
	if err := store.Set(CredentialKey, key); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}
