package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quiztutor/internal/evaluation"
	"github.com/abhisek/quiztutor/internal/events"
	"github.com/abhisek/quiztutor/internal/llm"
	"github.com/abhisek/quiztutor/internal/metrics"
	"github.com/abhisek/quiztutor/internal/questiongen"
	"github.com/abhisek/quiztutor/internal/review"
	"github.com/abhisek/quiztutor/internal/session"
	"github.com/abhisek/quiztutor/internal/store"
)

const loopsQuestion = `{
	"stage": "Advanced Improvement",
	"category": "Loops",
	"difficulty": 2,
	"content": "What does list(range(3)) return?",
	"options": {"A": "[0, 1, 2]", "B": "[1, 2, 3]", "C": "[0, 1, 2, 3]", "D": "[3]"},
	"correct_answer": "A"
}`

func evalJSON(change int) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"score_change":%d,"root_cause":"rc","improvement":"imp"}`, change))
}

type fakeEvaluator struct {
	mu    sync.Mutex
	res   evaluation.Result
	err   error
	calls int

	// When set, Evaluate signals started and waits for release.
	started chan struct{}
	release chan struct{}
}

func (f *fakeEvaluator) Evaluate(context.Context, evaluation.Input) (evaluation.Result, error) {
	if f.started != nil {
		close(f.started)
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.res, f.err
}

// failingScores fails GetScore and delegates everything else.
type failingScores struct {
	store.ScoreRepo
}

func (failingScores) GetScore(context.Context, int64, string) (int, error) {
	return 0, errors.New("score table unavailable")
}

type fakeReviews struct {
	calls int
	err   error
}

func (f *fakeReviews) Generate(_ context.Context, in review.Input) (*review.Review, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &review.Review{Gap: "loops", PathType: review.PathTypeFor(in.AvgScore)}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type harness struct {
	svc       *Service
	store     *store.Store
	questions *llm.MockProvider
	eval      *fakeEvaluator
	reviews   *fakeReviews
	pub       *recordingPublisher
	metrics   *metrics.Metrics
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithScores(t, nil)
}

// newHarnessWithScores lets wrap replace the tutor's score repository. The review trigger keeps the real one.
func newHarnessWithScores(t *testing.T, wrap func(store.ScoreRepo) store.ScoreRepo) *harness {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	st, err := store.Open(context.Background(), store.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	h := &harness{
		store:     st,
		questions: llm.NewMockProvider(),
		eval:      &fakeEvaluator{res: evaluation.Result{ScoreChange: 20, RootCause: "rc", Improvement: "imp"}},
		reviews:   &fakeReviews{},
		pub:       &recordingPublisher{},
		metrics:   metrics.New(),
	}
	scores := st.Scores()
	if wrap != nil {
		scores = wrap(scores)
	}
	h.svc = NewService(Deps{
		Sessions:  session.NewStore(),
		Scores:    scores,
		Mistakes:  st.WrongAnswers(),
		Users:     st.Users(),
		Questions: questiongen.New(h.questions, questiongen.DefaultConfig()),
		Evaluator: h.eval,
		Reviews:   review.NewTrigger(st.Scores(), st.WrongAnswers(), h.reviews, review.DefaultEvery, h.metrics),
		Events:    h.pub,
		Metrics:   h.metrics,
	})
	return h
}

func (h *harness) fetch(t *testing.T, userID int64) *FetchResponse {
	t.Helper()
	h.questions.AddResponse(llm.MockResponse{Content: json.RawMessage(loopsQuestion)})
	resp, err := h.svc.Fetch(context.Background(), FetchRequest{UserID: userID, Subject: "Python"})
	require.NoError(t, err)
	return resp
}

func TestFetchStoresPendingQuestion(t *testing.T) {
	h := newHarness(t)

	resp := h.fetch(t, 1)
	assert.Equal(t, "Loops", resp.Category)
	assert.Equal(t, 500, resp.CurrentScore)
	assert.Equal(t, 1, resp.CurrentQNum)
	assert.Len(t, resp.Options, 4)

	st := h.svc.Sessions().GetOrCreate(1)
	require.NotNil(t, st.Pending)
	assert.Equal(t, "A", st.Pending.CorrectAnswer)
	assert.Equal(t, "Python", st.Pending.Subject)
	assert.NotEmpty(t, st.Pending.ID)
}

func TestFetchInitialScoreOverride(t *testing.T) {
	h := newHarness(t)
	initial := 820
	h.questions.AddResponse(llm.MockResponse{Content: json.RawMessage(loopsQuestion)})

	resp, err := h.svc.Fetch(context.Background(), FetchRequest{UserID: 1, InitialScore: &initial})
	require.NoError(t, err)
	assert.Equal(t, 820, resp.CurrentScore)

	score, err := h.store.Scores().GetScore(context.Background(), 1, "Loops")
	require.NoError(t, err)
	assert.Equal(t, 820, score)

	msg := h.questions.Calls[0].Messages[0].Content
	assert.Contains(t, msg, "Stage: Mastery Challenge")
}

func TestFetchGenerationFailure(t *testing.T) {
	h := newHarness(t)
	h.questions.AddResponse(llm.MockResponse{Content: json.RawMessage(`{"stage":"s","category":"c","difficulty":9,"content":"q","options":{},"correct_answer":"A"}`)})

	_, err := h.svc.Fetch(context.Background(), FetchRequest{UserID: 1})
	require.ErrorIs(t, err, ErrQuestionGeneration)
	assert.Nil(t, h.svc.Sessions().GetOrCreate(1).Pending)
}

func TestFetchTopicIncludesRecentMistakes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.WrongAnswers().Record(ctx, store.WrongAnswer{
		UserID: 1, Category: "Loops", QuestionContent: "while True?", StudentAnswer: "B", CorrectAnswer: "C", RootCause: "no exit",
	}))
	h.questions.AddResponse(llm.MockResponse{Content: json.RawMessage(loopsQuestion)})

	_, err := h.svc.Fetch(ctx, FetchRequest{UserID: 1, Subject: "Python", Topic: "Loop"})
	require.NoError(t, err)
	assert.Contains(t, h.questions.Calls[0].Messages[0].Content, "while True? (chose B, correct C)")
}

func TestSubmitWithoutPending(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Submit(context.Background(), SubmitRequest{UserID: 1, Answer: "A"})
	require.ErrorIs(t, err, session.ErrNoPendingQuestion)
	assert.Equal(t, 0, h.eval.calls)
	assert.Equal(t, 0, h.svc.Sessions().GetOrCreate(1).TotalAnswered)
}

func TestSubmitTwiceFailsSecond(t *testing.T) {
	h := newHarness(t)
	h.fetch(t, 1)

	_, err := h.svc.Submit(context.Background(), SubmitRequest{UserID: 1, Answer: "A"})
	require.NoError(t, err)

	_, err = h.svc.Submit(context.Background(), SubmitRequest{UserID: 1, Answer: "A"})
	require.ErrorIs(t, err, session.ErrNoPendingQuestion)
	assert.Equal(t, 1, h.svc.Sessions().GetOrCreate(1).TotalAnswered)
}

func TestFourCorrectAnswers(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	wantScores := []int{522, 544, 569, 597}
	wantMsgs := []string{"", "", "3 consecutive correct, bonus +5", "4 consecutive correct, bonus +10"}

	for i := range 4 {
		h.fetch(t, 1)
		resp, err := h.svc.Submit(ctx, SubmitRequest{UserID: 1, Answer: " a "})
		require.NoError(t, err)

		assert.True(t, resp.IsCorrect)
		assert.Equal(t, "Loops", resp.CurrentTopic)
		assert.Equal(t, wantScores[i], resp.CurrentScore, "answer %d", i+1)
		assert.Equal(t, wantMsgs[i], resp.StreakMsg, "answer %d", i+1)
		assert.Nil(t, resp.ReviewData)
	}

	assert.Equal(t, 0, h.reviews.calls)
	assert.Len(t, h.pub.events, 4)
	assert.Equal(t, events.AnswerSubmitted, h.pub.events[0].Type)
}

func TestSubmitIncorrectRecordsMistake(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.eval.res = evaluation.Result{ScoreChange: -15, RootCause: "range excludes end", Improvement: "print values"}
	h.fetch(t, 3)

	resp, err := h.svc.Submit(ctx, SubmitRequest{UserID: 3, Answer: "c"})
	require.NoError(t, err)

	assert.False(t, resp.IsCorrect)
	// -(15 + 4*3) * (0.5 + 500/2000) = -27 * 0.75
	assert.Equal(t, -20, resp.BaseScoreChange)
	assert.Equal(t, 480, resp.CurrentScore)
	assert.Equal(t, "range excludes end", resp.RootCause)

	wrong, err := h.store.WrongAnswers().Recent(ctx, 3, 0)
	require.NoError(t, err)
	require.Len(t, wrong, 1)
	assert.Equal(t, "C", wrong[0].StudentAnswer)
	assert.Equal(t, "A", wrong[0].CorrectAnswer)
	assert.Equal(t, "Loops", wrong[0].Category)
}

func TestEvaluationDoesNotHoldUserLock(t *testing.T) {
	h := newHarness(t)
	h.eval.started = make(chan struct{})
	h.eval.release = make(chan struct{})
	h.fetch(t, 1)

	type result struct {
		resp *SubmitResponse
		err  error
	}
	submitted := make(chan result, 1)
	go func() {
		resp, err := h.svc.Submit(context.Background(), SubmitRequest{UserID: 1, Answer: "A"})
		submitted <- result{resp, err}
	}()

	select {
	case <-h.eval.started:
	case <-time.After(5 * time.Second):
		t.Fatal("evaluator never started")
	}

	fetched := make(chan error, 1)
	go func() {
		h.questions.AddResponse(llm.MockResponse{Content: json.RawMessage(loopsQuestion)})
		_, err := h.svc.Fetch(context.Background(), FetchRequest{UserID: 1, Subject: "Python"})
		fetched <- err
	}()

	select {
	case err := <-fetched:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		close(h.eval.release)
		t.Fatal("fetch for the same user blocked while the answer was being evaluated")
	}

	close(h.eval.release)
	res := <-submitted
	require.NoError(t, res.err)
	assert.True(t, res.resp.IsCorrect)
	assert.NotNil(t, h.svc.Sessions().GetOrCreate(1).Pending)
}

func TestSubmitRepositoryFailure(t *testing.T) {
	h := newHarness(t)
	h.fetch(t, 1)
	require.NoError(t, h.store.Close())

	_, err := h.svc.Submit(context.Background(), SubmitRequest{UserID: 1, Answer: "A"})
	require.ErrorIs(t, err, ErrRepository)
	assert.Empty(t, h.pub.events)
}

func TestFetchScoreFailureLeavesNoPending(t *testing.T) {
	h := newHarnessWithScores(t, func(r store.ScoreRepo) store.ScoreRepo {
		return failingScores{ScoreRepo: r}
	})
	h.questions.AddResponse(llm.MockResponse{Content: json.RawMessage(loopsQuestion)})

	_, err := h.svc.Fetch(context.Background(), FetchRequest{UserID: 1, Subject: "Python"})
	require.ErrorIs(t, err, ErrRepository)
	assert.Nil(t, h.svc.Sessions().GetOrCreate(1).Pending)

	_, err = h.svc.Submit(context.Background(), SubmitRequest{UserID: 1, Answer: "A"})
	require.ErrorIs(t, err, session.ErrNoPendingQuestion)
}

func TestSubmitEvaluatorFailureFallsBack(t *testing.T) {
	h := newHarness(t)
	h.eval.err = &evaluation.ParseError{Err: errors.New("bad json")}
	h.fetch(t, 1)

	resp, err := h.svc.Submit(context.Background(), SubmitRequest{UserID: 1, Answer: "A"})
	require.NoError(t, err)

	assert.Equal(t, evaluation.FallbackRootCause, resp.RootCause)
	assert.Equal(t, evaluation.FallbackImprovement, resp.Improvement)
	// (15 + 10) * 0.75
	assert.Equal(t, 18, resp.BaseScoreChange)

	var fallbacks int
	for _, e := range h.pub.events {
		if d, ok := e.Data.(events.AnswerData); ok && d.UsedFallback {
			fallbacks++
		}
	}
	assert.Equal(t, 1, fallbacks)
}

func TestReviewEveryFifthAnswer(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		h.fetch(t, 1)
		resp, err := h.svc.Submit(ctx, SubmitRequest{UserID: 1, Answer: "A"})
		require.NoError(t, err)
		if i%5 == 0 {
			require.NotNil(t, resp.ReviewData, "answer %d", i)
			assert.Equal(t, i, resp.ReviewData.Count)
		} else {
			assert.Nil(t, resp.ReviewData, "answer %d", i)
		}
	}
	assert.Equal(t, 2, h.reviews.calls)

	var reviews int
	for _, e := range h.pub.events {
		if e.Type == events.ReviewGenerated {
			reviews++
		}
	}
	assert.Equal(t, 2, reviews)
}

func TestReviewFailureDoesNotFailSubmit(t *testing.T) {
	h := newHarness(t)
	h.reviews.err = errors.New("review down")

	var last *SubmitResponse
	for range 5 {
		h.fetch(t, 1)
		resp, err := h.svc.Submit(context.Background(), SubmitRequest{UserID: 1, Answer: "A"})
		require.NoError(t, err)
		last = resp
	}
	assert.Nil(t, last.ReviewData)
	assert.Equal(t, 1, h.reviews.calls)
}

func TestFetchReportsQuestionNumber(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for i := range 6 {
		resp := h.fetch(t, 1)
		assert.Equal(t, i%5+1, resp.CurrentQNum)
		_, err := h.svc.Submit(ctx, SubmitRequest{UserID: 1, Answer: "B"})
		require.NoError(t, err)
	}
}

func TestConcurrentUsers(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for u := int64(1); u <= 8; u++ {
		h.fetch(t, u)
	}

	var wg sync.WaitGroup
	for u := int64(1); u <= 8; u++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.svc.Submit(ctx, SubmitRequest{UserID: u, Answer: "A"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	for u := int64(1); u <= 8; u++ {
		score, err := h.store.Scores().GetScore(ctx, u, "Loops")
		require.NoError(t, err)
		assert.Equal(t, 522, score, "user %d", u)
	}
}

func TestStatsAndDashboard(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	alice, err := h.store.Users().CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)
	bob, err := h.store.Users().CreateUser(ctx, "bob", "hash")
	require.NoError(t, err)

	h.eval.res = evaluation.Result{ScoreChange: -15, RootCause: "rc", Improvement: "imp"}
	h.fetch(t, alice)
	_, err = h.svc.Submit(ctx, SubmitRequest{UserID: alice, Answer: "D"})
	require.NoError(t, err)

	stats, err := h.svc.Stats(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 480, stats.Score)
	assert.Equal(t, map[string]int{"Loops": 480}, stats.TopicScores)
	assert.Equal(t, map[string]int{"Loops": 1}, stats.CategoryCounts)
	assert.Len(t, stats.WrongQuestions, 1)

	bobStats, err := h.svc.Stats(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, 500, bobStats.Score)
	assert.NotNil(t, bobStats.WrongQuestions)

	_, err = h.svc.Stats(ctx, 999)
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	rows, err := h.svc.Dashboard(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "bob", rows[0].Username)
	assert.Equal(t, 500, rows[0].AvgScore)
	assert.Equal(t, "alice", rows[1].Username)
	assert.Equal(t, 1, rows[1].WrongCount)
}

func TestTopics(t *testing.T) {
	h := newHarness(t)
	h.questions.AddResponse(llm.MockResponse{Content: json.RawMessage(`{"topics":["a","b","c","d","e"]}`)})

	topics, err := h.svc.Topics(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, topics, 5)
	assert.Contains(t, h.questions.Calls[0].Messages[0].Content, DefaultSubject)

	_, err = h.svc.Topics(context.Background(), "x")
	assert.ErrorIs(t, err, ErrTopicGeneration)
}

func TestNormalizeAnswer(t *testing.T) {
	tests := []struct{ in, want string }{
		{"a", "A"},
		{"  b\n", "B"},
		{"C", "C"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeAnswer(tt.in))
	}
}
