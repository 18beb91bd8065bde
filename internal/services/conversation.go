package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"eventhub/internal/domain"
)

const (
	// gatewayRetryBackoff is the pause before the single retry of a failed
	// language model call.
	gatewayRetryBackoff = 500 * time.Millisecond
)

var cancelPhrases = []string{"cancel", "abort", "stop", "quit", "never mind", "forget it"}

var confirmPhrases = []string{"yes", "y", "yep", "sure", "ok", "okay", "confirm", "create it", "go ahead"}

var rejectPhrases = []string{"no", "n", "nope", "not yet", "wait"}

func matchesPhrase(text string, phrases []string) bool {
	t := strings.ToLower(strings.TrimSpace(strings.TrimRight(text, ".!")))
	for _, p := range phrases {
		if t == p {
			return true
		}
	}
	return false
}

type conversationService struct {
	store       domain.SessionStore
	gateway     domain.CompletionGateway
	events      domain.EventService
	users       domain.UserRepository
	email       domain.EmailService
	logger      *slog.Logger
	idleTimeout time.Duration

	// locks serializes turns per session id. Concurrent messages for the same
	// session queue behind each other; sessions are otherwise independent.
	locks sync.Map // session id -> *sync.Mutex
}

// NewConversationService wires the dialogue orchestrator. It drives a
// conversation from the first user message to either a committed event or an
// aborted session, calling the language model once per turn.
func NewConversationService(
	store domain.SessionStore,
	gateway domain.CompletionGateway,
	events domain.EventService,
	users domain.UserRepository,
	email domain.EmailService,
	logger *slog.Logger,
	idleTimeout time.Duration,
) domain.ConversationService {
	return &conversationService{
		store:       store,
		gateway:     gateway,
		events:      events,
		users:       users,
		email:       email,
		logger:      logger,
		idleTimeout: idleTimeout,
	}
}

func (s *conversationService) lock(sessionID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *conversationService) StartOrResumeSession(ctx context.Context, actor *domain.User) (*domain.ConversationSession, error) {
	if actor == nil {
		return nil, domain.ErrForbidden("authentication required")
	}
	if d := domain.CanPerform(actor.Role, actor.ID, nil, domain.ActionCreate, time.Now()); !d.Allowed {
		return nil, domain.ErrForbidden(d.Reason)
	}
	if existing, ok := s.store.FindActive(actor.ID); ok {
		if !s.expired(existing, time.Now()) {
			return existing, nil
		}
		s.expire(existing)
	}
	now := time.Now()
	session := &domain.ConversationSession{
		ID:             uuid.NewString(),
		ActorID:        actor.ID,
		State:          domain.StateCollecting,
		CreatedAt:      now,
		LastActivityAt: now,
	}
	s.store.Put(session)
	return session, nil
}

func (s *conversationService) expired(session *domain.ConversationSession, now time.Time) bool {
	return now.Sub(session.LastActivityAt) > s.idleTimeout
}

// expire force-moves an idle session to aborted and discards it. No partial
// event is ever persisted from it.
func (s *conversationService) expire(session *domain.ConversationSession) {
	session.State = domain.StateAborted
	s.store.Delete(session.ID)
	s.locks.Delete(session.ID)
	s.logger.Info("conversation session expired", "session_id", session.ID, "actor_id", session.ActorID)
}

// load fetches the session, checks ownership, and enforces the idle timeout.
// A session belonging to another actor reads as not found.
func (s *conversationService) load(actorID, sessionID string) (*domain.ConversationSession, error) {
	session, ok := s.store.Get(sessionID)
	if !ok || session.ActorID != actorID {
		return nil, domain.ErrSessionNotFound
	}
	if s.expired(session, time.Now()) {
		s.expire(session)
		return nil, domain.ErrSessionExpired
	}
	return session, nil
}

func (s *conversationService) PostMessage(ctx context.Context, actorID, sessionID, text string) (*domain.TurnResult, error) {
	mu := s.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	session, err := s.load(actorID, sessionID)
	if err != nil {
		return nil, err
	}

	// Explicit cancellation halts further model calls immediately.
	if matchesPhrase(text, cancelPhrases) {
		return s.abort(session, text)
	}

	if session.State == domain.StateConfirming {
		if matchesPhrase(text, confirmPhrases) {
			return s.commit(ctx, session)
		}
		// A bare rejection reopens collection; a message naming a change falls
		// through to the model so the corrected field overwrites the old value.
		if matchesPhrase(text, rejectPhrases) {
			session.State = domain.StateCollecting
			reply := "Okay, what would you like to change?"
			now := time.Now()
			session.Turns = append(session.Turns, domain.Turn{UserText: text, Reply: reply, At: now})
			session.LastActivityAt = now
			s.store.Put(session)
			return &domain.TurnResult{State: session.State, Reply: reply, Draft: session.Draft}, nil
		}
	}

	completion, err := s.complete(ctx, BuildCompletionRequest(&session.Draft, text))
	if err != nil {
		// Session state deliberately untouched: the same turn can be retried
		// once the model is reachable again.
		return nil, err
	}

	outcomes := ApplyCompletion(&session.Draft, completion)
	missing := MissingFields(&session.Draft)

	var reply string
	if field, reason, outstanding := firstOutstanding(outcomes, missing); outstanding {
		session.State = domain.StateClarifying
		reply = clarifyMessage(field, reason)
	} else {
		session.State = domain.StateConfirming
		reply = confirmMessage(&session.Draft)
	}

	now := time.Now()
	session.Turns = append(session.Turns, domain.Turn{UserText: text, Reply: reply, At: now})
	session.LastActivityAt = now
	s.store.Put(session)

	return &domain.TurnResult{State: session.State, Reply: reply, Draft: session.Draft}, nil
}

// complete calls the language model with one retry. Every gateway failure
// mode (timeout, transport error, empty response) surfaces as
// ErrModelUnavailable.
func (s *conversationService) complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	completion, err := s.gateway.Complete(ctx, req)
	if err == nil {
		return completion, nil
	}
	s.logger.Warn("model call failed, retrying once", "err", err)

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", domain.ErrModelUnavailable, ctx.Err())
	case <-time.After(gatewayRetryBackoff):
	}

	completion, err = s.gateway.Complete(ctx, req)
	if err != nil {
		s.logger.Error("model unavailable after retry", "err", err)
		return "", fmt.Errorf("%w: %v", domain.ErrModelUnavailable, err)
	}
	return completion, nil
}

func (s *conversationService) ConfirmDraft(ctx context.Context, actorID, sessionID string) (*domain.TurnResult, error) {
	mu := s.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	session, err := s.load(actorID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State != domain.StateConfirming {
		return nil, fmt.Errorf("%w: draft is not awaiting confirmation", domain.ErrConflict)
	}
	return s.commit(ctx, session)
}

// commit runs the create permission check and performs the single durable
// write of the conversation. On persistence failure the session stays in
// confirming so the user can retry without re-entering fields.
func (s *conversationService) commit(ctx context.Context, session *domain.ConversationSession) (*domain.TurnResult, error) {
	actor, err := s.users.GetByID(ctx, session.ActorID)
	if err != nil {
		return nil, fmt.Errorf("load actor: %w", err)
	}

	event := session.Draft.ToEvent(actor.ID)
	created, err := s.events.Create(ctx, actor, event)
	if err != nil {
		if domain.IsForbidden(err) {
			// Terminal for the create only; the session and draft survive.
			return nil, err
		}
		s.logger.Error("event commit failed", "session_id", session.ID, "err", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}

	now := time.Now()
	reply := fmt.Sprintf("Done! %q is published.", created.Title)
	session.Turns = append(session.Turns, domain.Turn{UserText: "confirm", Reply: reply, At: now})
	session.LastActivityAt = now
	session.State = domain.StateCompleted
	s.store.Delete(session.ID)
	s.locks.Delete(session.ID)

	if err := s.email.SendEventPublished(ctx, &domain.EventPublishedEmailData{
		Email:      actor.Email,
		Name:       actor.Name,
		EventTitle: created.Title,
		EventID:    created.ID,
		StartTime:  created.StartTime.Format(time.RFC1123),
	}); err != nil {
		s.logger.Warn("event published email failed", "event_id", created.ID, "err", err)
	}

	return &domain.TurnResult{
		State:   domain.StateCompleted,
		Reply:   reply,
		Draft:   session.Draft,
		EventID: created.ID,
	}, nil
}

func (s *conversationService) AbortSession(ctx context.Context, actorID, sessionID string) (*domain.TurnResult, error) {
	mu := s.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	session, ok := s.store.Get(sessionID)
	if !ok || session.ActorID != actorID {
		return nil, domain.ErrSessionNotFound
	}
	return s.abort(session, "")
}

// abort discards the in-memory draft; nothing from the session is persisted.
func (s *conversationService) abort(session *domain.ConversationSession, text string) (*domain.TurnResult, error) {
	now := time.Now()
	reply := "Okay, I've cancelled this event draft."
	if text != "" {
		session.Turns = append(session.Turns, domain.Turn{UserText: text, Reply: reply, At: now})
	}
	session.LastActivityAt = now
	session.State = domain.StateAborted
	s.store.Delete(session.ID)
	s.locks.Delete(session.ID)
	s.logger.Info("conversation aborted", "session_id", session.ID)
	return &domain.TurnResult{State: domain.StateAborted, Reply: reply, Draft: session.Draft}, nil
}
