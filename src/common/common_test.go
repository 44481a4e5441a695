package common

import (
	"context"
	"errors"
	"testing"

	"taskhub/src/lib"
	"taskhub/src/membership"
	"taskhub/src/models"
	"taskhub/src/types"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type fakeNotificationStore struct {
	user          *models.User
	label         string
	recipientErr  error
	saved         []*models.Notification
	lastSubjectID uuid.UUID
}

func (f *fakeNotificationStore) Recipient(ctx context.Context, scope types.Scope, subjectID uuid.UUID) (*models.User, error) {
	f.lastSubjectID = subjectID
	if f.recipientErr != nil {
		return nil, f.recipientErr
	}
	return f.user, nil
}

func (f *fakeNotificationStore) ScopeLabel(ctx context.Context, scope types.Scope) (string, error) {
	return f.label, nil
}

func (f *fakeNotificationStore) SaveNotification(ctx context.Context, n *models.Notification) error {
	f.saved = append(f.saved, n)
	return nil
}

type NotifierTestSuite struct {
	suite.Suite
	store *fakeNotificationStore
	sent  []*lib.SendMailInput
	n     *Notifier
}

func (s *NotifierTestSuite) SetupTest() {
	s.store = &fakeNotificationStore{
		user:  &models.User{ID: uuid.New(), Name: "Ada", Email: "ada@example.com"},
		label: "team Platform",
	}
	s.sent = nil
	s.n = NewNotifier(s.store, func(in *lib.SendMailInput) error {
		s.sent = append(s.sent, in)
		return nil
	})
}

func TestNotifierTestSuite(t *testing.T) {
	suite.Run(t, new(NotifierTestSuite))
}

func (s *NotifierTestSuite) TestRoleUpdatedNotifiesSubject() {
	subjectID := uuid.New()
	scopeID := uuid.New()
	payload := `{"name":"member.role_updated","scope":{"type":"team","id":"` + scopeID.String() +
		`"},"payload":{"subject_id":"` + subjectID.String() + `","role":"admin"}}`

	s.Require().NoError(s.n.Process(context.Background(), payload))

	s.Equal(subjectID, s.store.lastSubjectID)
	s.Require().Len(s.store.saved, 1)
	saved := s.store.saved[0]
	s.Equal(s.store.user.ID, saved.RecipientID)
	s.Equal("team", saved.ReferenceType)
	s.Equal(scopeID.String(), saved.ReferenceValue)
	s.Equal(membership.JOB_MEMBER_ROLE_UPDATED, saved.ActionType)
	s.Equal("Your role in team Platform changed", saved.Title)
	s.Require().Len(s.sent, 1)
	s.Equal([]string{"ada@example.com"}, s.sent[0].To)
	s.Contains(s.sent[0].Body, "admin")
}

func (s *NotifierTestSuite) TestIgnoresJobsWithoutRecipient() {
	payload := `{"name":"team.deleted","scope":{"type":"team","id":"` + uuid.NewString() + `"},"payload":{}}`

	s.Require().NoError(s.n.Process(context.Background(), payload))
	s.Empty(s.store.saved)
	s.Empty(s.sent)
}

func (s *NotifierTestSuite) TestRejectsMalformedPayloads() {
	s.Error(s.n.Process(context.Background(), `{"name":`))
	s.Error(s.n.Process(context.Background(), `{"name":"member.added","scope":{"type":"galaxy","id":"`+uuid.NewString()+`"}}`))
	s.Error(s.n.Process(context.Background(), `{"name":"member.added","scope":{"type":"team","id":"`+uuid.NewString()+`"},"payload":{}}`))
	s.Empty(s.store.saved)
}

func (s *NotifierTestSuite) TestSkipsMailWithoutAddress() {
	s.store.user.Email = ""
	payload := `{"name":"member.added","scope":{"type":"workspace","id":"` + uuid.NewString() +
		`"},"payload":{"subject_id":"` + uuid.NewString() + `"}}`

	s.Require().NoError(s.n.Process(context.Background(), payload))
	s.Len(s.store.saved, 1)
	s.Empty(s.sent)
}

func (s *NotifierTestSuite) TestRecipientLookupFailure() {
	s.store.recipientErr = errors.New("record not found")
	payload := `{"name":"member.removed","scope":{"type":"project","id":"` + uuid.NewString() +
		`"},"payload":{"subject_id":"` + uuid.NewString() + `"}}`

	s.Error(s.n.Process(context.Background(), payload))
	s.Empty(s.store.saved)
}

type fakeAuditor struct {
	anomalies []membership.Anomaly
	err       error
}

func (f fakeAuditor) OwnershipAnomalies(ctx context.Context) ([]membership.Anomaly, error) {
	return f.anomalies, f.err
}

type recordingQueue struct {
	jobs []membership.Job
	err  error
}

func (q *recordingQueue) Enqueue(ctx context.Context, job membership.Job) error {
	q.jobs = append(q.jobs, job)
	return q.err
}

func TestRunOwnershipAuditReportsViolations(t *testing.T) {
	teamScope := types.TeamScope(uuid.New())
	projectScope := types.ProjectScope(uuid.New())
	auditor := fakeAuditor{anomalies: []membership.Anomaly{
		{Scope: teamScope, Members: 3, Owners: 0},
		{Scope: projectScope, Members: 2, Owners: 2},
	}}
	queue := &recordingQueue{}

	n, err := RunOwnershipAudit(context.Background(), auditor, queue)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, queue.jobs, 2)
	assert.Equal(t, membership.JOB_OWNERSHIP_VIOLATION, queue.jobs[0].Name)
	assert.Equal(t, teamScope, queue.jobs[0].Scope)
	assert.Equal(t, int64(0), queue.jobs[0].Payload["owners"])
	assert.Equal(t, int64(2), queue.jobs[1].Payload["owners"])
}

func TestRunOwnershipAuditToleratesQueueFailure(t *testing.T) {
	auditor := fakeAuditor{anomalies: []membership.Anomaly{{Scope: types.TeamScope(uuid.New()), Members: 1}}}
	queue := &recordingQueue{err: errors.New("queue down")}

	n, err := RunOwnershipAudit(context.Background(), auditor, queue)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = RunOwnershipAudit(context.Background(), auditor, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRunOwnershipAuditScanFailure(t *testing.T) {
	_, err := RunOwnershipAudit(context.Background(), fakeAuditor{err: errors.New("connection reset")}, nil)
	assert.Error(t, err)
}

func TestRedisPop(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	var got []string
	handler := func(payload string) { got = append(got, payload) }

	mock.ExpectBRPop(redisPopTimeout, "MembershipNotifications").SetVal([]string{"MembershipNotifications", `{"name":"member.added"}`})
	ok, err := redisPop(context.Background(), rdb, "MembershipNotifications", handler)
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectBRPop(redisPopTimeout, "MembershipNotifications").RedisNil()
	ok, err = redisPop(context.Background(), rdb, "MembershipNotifications", handler)
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectBRPop(redisPopTimeout, "MembershipNotifications").SetErr(redis.ErrClosed)
	_, err = redisPop(context.Background(), rdb, "MembershipNotifications", handler)
	assert.ErrorIs(t, err, redis.ErrClosed)

	assert.Equal(t, []string{`{"name":"member.added"}`}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
