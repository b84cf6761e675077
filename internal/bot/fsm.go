package bot

import "sync"

// Action identifies an inline-keyboard action. All callback routing is
// keyed on these values instead of raw callback strings.
type Action int

const (
	ActionDaily Action = iota
	ActionWeekly
	ActionNews
	ActionSelectCoin
	ActionCoin
	ActionBack
	ActionCancel
)

var actionUniques = map[Action]string{
	ActionDaily:      "daily",
	ActionWeekly:     "weekly",
	ActionNews:       "news",
	ActionSelectCoin: "specific_coin",
	ActionCoin:       "coin",
	ActionBack:       "back_to_main",
	ActionCancel:     "cancel",
}

func (a Action) callbackUnique() string { return actionUniques[a] }

// State is the per-chat conversation state.
type State int

const (
	StateIdle State = iota
	StateGeneratingAnalysis
	StateGeneratingForecast
	StateSelectingCoin
)

type session struct {
	state State
	seq   uint64
}

// sessionStore tracks one session per chat. The sequence number fences
// in-flight generation work: a result is rendered only when its token
// is still current, so cancelling discards the result instead of
// aborting the underlying calls.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[int64]*session)}
}

func (s *sessionStore) get(chatID int64) *session {
	sess, ok := s.sessions[chatID]
	if !ok {
		sess = &session{}
		s.sessions[chatID] = sess
	}
	return sess
}

func (s *sessionStore) State(chatID int64) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(chatID).state
}

// Begin moves the chat into state and returns the token the in-flight
// work must present to Complete.
func (s *sessionStore) Begin(chatID int64, state State) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(chatID)
	sess.state = state
	sess.seq++
	return sess.seq
}

// Complete returns the chat to Idle iff token is still current and
// reports whether the caller should render its result.
func (s *sessionStore) Complete(chatID int64, token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(chatID)
	if sess.seq != token {
		return false
	}
	sess.state = StateIdle
	return true
}

// Set changes the state without invalidating in-flight work. Used for
// transitions that carry no generation, such as entering the coin picker.
func (s *sessionStore) Set(chatID int64, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(chatID).state = state
}

// Reset returns the chat to Idle and invalidates any in-flight work.
func (s *sessionStore) Reset(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(chatID)
	sess.state = StateIdle
	sess.seq++
}
