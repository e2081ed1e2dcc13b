package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"kanguru-service/internal/domain"
)

const maxTxRetries = 5

// ProfileStore keeps PIN accounts in Redis:
//
//	SET   profile:{uid} {json}
//	SETNX pin:{pin}     {uid}
type ProfileStore struct {
	client *redis.Client
}

func NewProfileStore(client *redis.Client) *ProfileStore {
	return &ProfileStore{client: client}
}

func (s *ProfileStore) GetProfile(ctx context.Context, uid string) (domain.UserProfile, error) {
	return decodeProfile(s.client.Get(ctx, profileKey(uid)).Bytes())
}

func (s *ProfileStore) PutProfile(ctx context.Context, uid string, profile domain.UserProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, profileKey(uid), data, 0).Err()
}

// UpdateProfile runs fn inside a WATCH/MULTI transaction and retries when
// another writer touched the profile first.
func (s *ProfileStore) UpdateProfile(ctx context.Context, uid string, fn func(*domain.UserProfile) error) error {
	key := profileKey(uid)
	txf := func(tx *redis.Tx) error {
		profile, err := decodeProfile(tx.Get(ctx, key).Bytes())
		if err != nil {
			return err
		}
		if err := fn(&profile); err != nil {
			return err
		}
		data, err := json.Marshal(profile)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("update profile %s: %w", uid, redis.TxFailedErr)
}

func (s *ProfileStore) ClaimPIN(ctx context.Context, pin, uid string) (bool, error) {
	return s.client.SetNX(ctx, pinKey(pin), uid, 0).Result()
}

func (s *ProfileStore) LookupPIN(ctx context.Context, pin string) (string, error) {
	uid, err := s.client.Get(ctx, pinKey(pin)).Result()
	if isMiss(err) {
		return "", domain.ErrPINNotFound
	}
	return uid, err
}

func decodeProfile(raw []byte, err error) (domain.UserProfile, error) {
	if isMiss(err) {
		return domain.UserProfile{}, domain.ErrProfileNotFound
	}
	if err != nil {
		return domain.UserProfile{}, err
	}
	var profile domain.UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return domain.UserProfile{}, fmt.Errorf("unmarshal profile: %w", err)
	}
	return profile, nil
}

func profileKey(uid string) string {
	return "profile:" + uid
}

func pinKey(pin string) string {
	return "pin:" + pin
}
