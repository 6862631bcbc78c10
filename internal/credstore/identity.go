package credstore

import "github.com/google/uuid"

// ClientID returns this installation's stable device identifier, generating
// and persisting one on first use.
func ClientID(s Store) (string, error) {
	id, err := s.Get(KeyClientID)
	if err == nil && id != "" {
		return id, nil
	}
	if err != nil && err != ErrNotFound {
		return "", err
	}
	id = uuid.NewString()
	if err := s.Set(KeyClientID, id); err != nil {
		return "", err
	}
	return id, nil
}
