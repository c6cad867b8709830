package dialog

import "context"

// Store is the part of Repo the token adapter needs.
type Store interface {
	Get(ctx context.Context, chatID int64) (*Item, error)
	Set(ctx context.Context, chatID int64, state State, payload Payload) error
}

// Tokens keeps a chat's bearer token in its dialog payload under "token".
type Tokens struct {
	store  Store
	chatID int64
}

func NewTokens(store Store, chatID int64) *Tokens {
	return &Tokens{store: store, chatID: chatID}
}

func (t *Tokens) Load(ctx context.Context) (string, error) {
	it, err := t.store.Get(ctx, t.chatID)
	if err != nil {
		return "", err
	}
	tok, _ := GetString(it.Payload, KeyToken)
	return tok, nil
}

func (t *Tokens) Save(ctx context.Context, token string) error {
	it, err := t.store.Get(ctx, t.chatID)
	if err != nil {
		return err
	}
	it.Payload[KeyToken] = token
	return t.store.Set(ctx, t.chatID, it.State, it.Payload)
}

// Clear drops the token and everything the chat was in the middle of.
func (t *Tokens) Clear(ctx context.Context) error {
	return t.store.Set(ctx, t.chatID, StateIdle, Payload{})
}

// Transition меняет состояние, сохраняя payload (в том числе токен).
func Transition(ctx context.Context, s Store, chatID int64, state State, set Payload) error {
	it, err := s.Get(ctx, chatID)
	if err != nil {
		return err
	}
	for k, v := range set {
		it.Payload[k] = v
	}
	return s.Set(ctx, chatID, state, it.Payload)
}

// Idle возвращает чат в исходное состояние; токен остаётся.
func Idle(ctx context.Context, s Store, chatID int64) error {
	it, err := s.Get(ctx, chatID)
	if err != nil {
		return err
	}
	p := Payload{}
	if tok, ok := GetString(it.Payload, KeyToken); ok {
		p[KeyToken] = tok
	}
	return s.Set(ctx, chatID, StateIdle, p)
}
