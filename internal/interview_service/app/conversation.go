package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/talentwire/interview-gateway/internal/interview_service/domain"
)

// InboundEvent is one webhook event from the messaging gateway: either a
// candidate reply or a delivery-status report for a prior send.
type InboundEvent struct {
	From              string
	To                string
	Body              string
	DeliveryStatus    string
	ProviderMessageID string
}

// Reply is the text to hand back to the messaging gateway for synchronous
// delivery. Nil means nothing to send.
type Reply struct {
	Text string
}

// CompletionNotifier is invoked at the single call site that performs the
// completed transition, to enqueue asynchronous scoring.
type CompletionNotifier interface {
	InterviewCompleted(ctx context.Context, interviewID uuid.UUID) error
}

// ReschedulePredicate decides whether an in-progress interview should be
// cancelled early because the first answers show the candidate is unprepared.
type ReschedulePredicate interface {
	ShouldReschedule(ctx context.Context, interviewID uuid.UUID) bool
}

const (
	replyDeliveryWait      = "Delivery issue detected. Please wait."
	replyNoActiveForResend = "Delivery issue occurred, but no active interview exists."
	replyResendUnavailable = "Temporary issue occurred. Please try again."
	replyNoApplication     = "We could not find an application linked to this phone number."
	replyNoQuestions       = "No questions configured. Please contact support."
	replyCancelled         = "Interview cancelled. Have a great day!"
	replyYesOrNo           = "Please reply YES or NO."
	replyCompleted         = "Thank you! That was the last question. We will review your answers."
	replyReschedule        = "It seems you may not be fully prepared today, so let's reschedule your interview. " +
		"You will be notified soon with the updated date. Thank you."
	replyUnexpected = "Unexpected error. Please try again."

	greetingPrefix = "Great! Let's begin.\n\n"
)

var affirmativeReplies = map[string]struct{}{
	"yes": {}, "y": {}, "ok": {}, "sure": {},
}

var negativeReplies = map[string]struct{}{
	"no": {}, "n": {}, "cancel": {}, "stop": {},
}

// The sequence number at which the reschedule predicate is evaluated:
// exactly three questions have been answered by then.
const rescheduleCheckSequence = 4

// ConversationService is the conversation state machine. It consumes one
// inbound event at a time, reads and writes interview status and the message
// log, and emits at most one reply.
type ConversationService struct {
	candidates domain.CandidateRepository
	interviews domain.InterviewRepository
	questions  domain.QuestionRepository
	messages   domain.MessageRepository
	reschedule ReschedulePredicate
	notifier   CompletionNotifier
	logger     *slog.Logger
}

// NewConversationService creates the state machine.
func NewConversationService(
	candidates domain.CandidateRepository,
	interviews domain.InterviewRepository,
	questions domain.QuestionRepository,
	messages domain.MessageRepository,
	reschedule ReschedulePredicate,
	notifier CompletionNotifier,
	logger *slog.Logger,
) *ConversationService {
	return &ConversationService{
		candidates: candidates,
		interviews: interviews,
		questions:  questions,
		messages:   messages,
		reschedule: reschedule,
		notifier:   notifier,
		logger:     logger,
	}
}

// HandleInbound processes one inbound event and returns the reply to send.
// Lookup misses (unknown sender, no active interview, missing first
// question) are normal branches resolved with a user-visible reply, never an
// error; an error return means a repository failure.
func (s *ConversationService) HandleInbound(ctx context.Context, event InboundEvent) (*Reply, error) {
	if strings.EqualFold(strings.TrimSpace(event.DeliveryStatus), string(domain.MessageStatusUndelivered)) {
		return s.handleUndelivered(ctx, event)
	}

	body := strings.TrimSpace(event.Body)

	candidate, err := s.candidates.FindByPhone(ctx, event.From)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.InfoContext(ctx, "Inbound message from unknown sender", "from", event.From)
			conversationRepliesCounter.WithLabelValues("unknown_sender").Inc()
			return &Reply{Text: replyNoApplication}, nil
		}
		return nil, fmt.Errorf("find candidate by phone: %w", err)
	}

	interview, err := s.interviews.FindActiveByCandidate(ctx, candidate.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.InfoContext(ctx, "No active interview for candidate", "candidate_id", candidate.ID)
			conversationRepliesCounter.WithLabelValues("no_active_interview").Inc()
			return &Reply{Text: fmt.Sprintf("Hi %s, you don't have an active interview session.", candidate.FirstName)}, nil
		}
		return nil, fmt.Errorf("find active interview: %w", err)
	}

	relatedQuestion, err := s.correlateQuestion(ctx, interview.ID)
	if err != nil {
		return nil, err
	}

	inbound := domain.NewMessage(interview.ID, domain.DirectionInbound, body, domain.MessageStatusReceived, questionRef(relatedQuestion))
	if err := s.messages.Append(ctx, inbound); err != nil {
		return nil, fmt.Errorf("append inbound message: %w", err)
	}

	switch interview.Status {
	case domain.InterviewStatusScheduled:
		return s.handleScheduled(ctx, interview, body)
	case domain.InterviewStatusInProgress:
		return s.handleInProgress(ctx, interview, relatedQuestion)
	default:
		// FindActiveByCandidate only returns scheduled or in_progress; this
		// branch guards against a status change between read and dispatch.
		s.logger.WarnContext(ctx, "Interview in unexpected status", "interview_id", interview.ID, "status", interview.Status)
		conversationRepliesCounter.WithLabelValues("unexpected_status").Inc()
		return &Reply{Text: replyUnexpected}, nil
	}
}

// handleUndelivered re-sends the last outbound message verbatim after the
// gateway reports a delivery failure. Nothing else runs for such events.
func (s *ConversationService) handleUndelivered(ctx context.Context, event InboundEvent) (*Reply, error) {
	// The failed message went to the candidate, so their number is in To.
	phone := event.To
	if phone == "" {
		phone = event.From
	}

	s.logger.InfoContext(ctx, "Delivery failure reported, attempting resend",
		"provider_message_id", event.ProviderMessageID,
		"phone", phone,
	)

	candidate, err := s.candidates.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			conversationRepliesCounter.WithLabelValues("undelivered_unknown_candidate").Inc()
			return &Reply{Text: replyDeliveryWait}, nil
		}
		return nil, fmt.Errorf("find candidate by phone: %w", err)
	}

	interview, err := s.interviews.FindActiveByCandidate(ctx, candidate.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			conversationRepliesCounter.WithLabelValues("undelivered_no_interview").Inc()
			return &Reply{Text: replyNoActiveForResend}, nil
		}
		return nil, fmt.Errorf("find active interview: %w", err)
	}

	lastOutbound, err := s.messages.LastOutbound(ctx, interview.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			conversationRepliesCounter.WithLabelValues("undelivered_nothing_to_resend").Inc()
			return &Reply{Text: replyResendUnavailable}, nil
		}
		return nil, fmt.Errorf("find last outbound message: %w", err)
	}

	resend := domain.NewMessage(interview.ID, domain.DirectionOutbound, lastOutbound.MessageText, domain.MessageStatusSent, lastOutbound.QuestionID)
	if err := s.messages.Append(ctx, resend); err != nil {
		return nil, fmt.Errorf("append resend message: %w", err)
	}

	conversationRepliesCounter.WithLabelValues("undelivered_resend").Inc()
	return &Reply{Text: lastOutbound.MessageText}, nil
}

// handleScheduled expects a yes/no confirmation.
func (s *ConversationService) handleScheduled(ctx context.Context, interview *domain.Interview, body string) (*Reply, error) {
	lowered := strings.ToLower(body)

	if _, ok := affirmativeReplies[lowered]; ok {
		now := time.Now().UTC()
		transition := domain.StatusTransition{
			From:      domain.InterviewStatusScheduled,
			To:        domain.InterviewStatusInProgress,
			StartedAt: &now,
		}

		firstQuestion, err := s.questions.FindBySequence(ctx, interview.ID, 1)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("find first question: %w", err)
		}

		if firstQuestion == nil {
			// Interview still moves to in_progress, matching the confirmed
			// intent; an operator has to fix the question bank. The error
			// reply is not part of the conversation log.
			s.logger.ErrorContext(ctx, "Interview confirmed but no first question configured", "interview_id", interview.ID)
			return s.applyTransition(ctx, interview.ID, transition, nil, replyNoQuestions, nil)
		}

		text := greetingPrefix + firstQuestion.QuestionText
		reply := domain.NewMessage(interview.ID, domain.DirectionOutbound, text, domain.MessageStatusSent, questionRef(firstQuestion))
		return s.applyTransition(ctx, interview.ID, transition, reply, text, nil)
	}

	if _, ok := negativeReplies[lowered]; ok {
		now := time.Now().UTC()
		transition := domain.StatusTransition{
			From:    domain.InterviewStatusScheduled,
			To:      domain.InterviewStatusCanceled,
			EndedAt: &now,
		}
		reply := domain.NewMessage(interview.ID, domain.DirectionOutbound, replyCancelled, domain.MessageStatusSent, uuid.NullUUID{})
		return s.applyTransition(ctx, interview.ID, transition, reply, replyCancelled, nil)
	}

	// Ambiguous reply: no transition, just nudge.
	nudge := domain.NewMessage(interview.ID, domain.DirectionOutbound, replyYesOrNo, domain.MessageStatusSent, uuid.NullUUID{})
	if err := s.messages.Append(ctx, nudge); err != nil {
		return nil, fmt.Errorf("append reply message: %w", err)
	}
	conversationRepliesCounter.WithLabelValues("confirmation_nudge").Inc()
	return &Reply{Text: replyYesOrNo}, nil
}

// handleInProgress advances the question sequence, evaluating the reschedule
// predicate just before the fourth question would be asked.
func (s *ConversationService) handleInProgress(ctx context.Context, interview *domain.Interview, relatedQuestion *domain.Question) (*Reply, error) {
	currentSeq := 0
	if relatedQuestion != nil {
		currentSeq = relatedQuestion.SequenceNumber
	}

	nextQuestion, err := s.questions.FindNextAfter(ctx, interview.ID, currentSeq)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find next question: %w", err)
	}

	if nextQuestion != nil && nextQuestion.SequenceNumber == rescheduleCheckSequence {
		if s.reschedule.ShouldReschedule(ctx, interview.ID) {
			now := time.Now().UTC()
			transition := domain.StatusTransition{
				From:    domain.InterviewStatusInProgress,
				To:      domain.InterviewStatusCanceled,
				EndedAt: &now,
			}
			s.logger.InfoContext(ctx, "Rescheduling interview after weak opening answers", "interview_id", interview.ID)
			reply := domain.NewMessage(interview.ID, domain.DirectionOutbound, replyReschedule, domain.MessageStatusSent, uuid.NullUUID{})
			return s.applyTransition(ctx, interview.ID, transition, reply, replyReschedule, nil)
		}
	}

	if nextQuestion != nil {
		ask := domain.NewMessage(interview.ID, domain.DirectionOutbound, nextQuestion.QuestionText, domain.MessageStatusSent, questionRef(nextQuestion))
		if err := s.messages.Append(ctx, ask); err != nil {
			return nil, fmt.Errorf("append question message: %w", err)
		}
		conversationRepliesCounter.WithLabelValues("question_asked").Inc()
		return &Reply{Text: nextQuestion.QuestionText}, nil
	}

	// No next question: the interview is complete.
	now := time.Now().UTC()
	transition := domain.StatusTransition{
		From:    domain.InterviewStatusInProgress,
		To:      domain.InterviewStatusCompleted,
		EndedAt: &now,
	}
	reply := domain.NewMessage(interview.ID, domain.DirectionOutbound, replyCompleted, domain.MessageStatusSent, uuid.NullUUID{})
	return s.applyTransition(ctx, interview.ID, transition, reply, replyCompleted, s.notifyCompleted)
}

// applyTransition performs the guarded transition plus outbound append and
// updates metrics. outbound may be nil for replies that are not part of the
// conversation log. afterCommit, when non-nil, runs only if the transition
// actually applied.
func (s *ConversationService) applyTransition(
	ctx context.Context,
	interviewID uuid.UUID,
	transition domain.StatusTransition,
	outbound *domain.Message,
	replyText string,
	afterCommit func(ctx context.Context, interviewID uuid.UUID),
) (*Reply, error) {
	applied, err := s.interviews.TransitionWithOutbound(ctx, interviewID, transition, outbound)
	if err != nil {
		return nil, fmt.Errorf("transition interview %s -> %s: %w", transition.From, transition.To, err)
	}

	if !applied {
		// A concurrent or replayed event already moved the interview on. The
		// reply still goes out, but nothing was recorded.
		s.logger.WarnContext(ctx, "Interview transition skipped, status already changed",
			"interview_id", interviewID,
			"from", transition.From,
			"to", transition.To,
		)
		conversationRepliesCounter.WithLabelValues("transition_replayed").Inc()
		return &Reply{Text: replyText}, nil
	}

	interviewTransitionsCounter.WithLabelValues(transition.From.String(), transition.To.String()).Inc()

	if afterCommit != nil {
		afterCommit(ctx, interviewID)
	}

	return &Reply{Text: replyText}, nil
}

// notifyCompleted enqueues asynchronous scoring. A publish failure is logged
// and swallowed: the score stays null and the interview can be re-enqueued.
func (s *ConversationService) notifyCompleted(ctx context.Context, interviewID uuid.UUID) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.InterviewCompleted(ctx, interviewID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to enqueue interview scoring", "error", err, "interview_id", interviewID)
	}
}

// correlateQuestion resolves the question the sender is answering: the one
// linked to the most recently created outbound message. The tie-break is
// strictly latest by creation time.
func (s *ConversationService) correlateQuestion(ctx context.Context, interviewID uuid.UUID) (*domain.Question, error) {
	lastOutbound, err := s.messages.LastOutbound(ctx, interviewID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find last outbound message: %w", err)
	}

	if !lastOutbound.QuestionID.Valid {
		return nil, nil
	}

	question, err := s.questions.GetByID(ctx, lastOutbound.QuestionID.UUID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "Outbound message references missing question",
				"message_id", lastOutbound.ID,
				"question_id", lastOutbound.QuestionID.UUID,
			)
			return nil, nil
		}
		return nil, fmt.Errorf("get correlated question: %w", err)
	}

	return question, nil
}

func questionRef(q *domain.Question) uuid.NullUUID {
	if q == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: q.ID, Valid: true}
}
