package lookup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"transparencia-rpa/internal/bond"
	"transparencia-rpa/internal/portal"
)

const validCPF = "529.982.247-25"

type fakeSession struct {
	fatal    bool
	released bool
}

func (f *fakeSession) Context() context.Context { return context.Background() }
func (f *fakeSession) Fatal() bool              { return f.fatal }
func (f *fakeSession) Release()                 { f.released = true }

type fakeSessions struct {
	sess       *fakeSession
	acquireErr error
	acquired   int
	recycled   int
}

func (f *fakeSessions) Acquire(context.Context) (Session, error) {
	f.acquired++
	if f.acquireErr != nil {
		return nil, f.acquireErr
	}
	return f.sess, nil
}

func (f *fakeSessions) Recycle() { f.recycled++ }

type fakeNavigator struct {
	bonds []bond.Bond
	err   error
	calls int
}

func (f *fakeNavigator) Lookup(context.Context, string) ([]bond.Bond, error) {
	f.calls++
	return f.bonds, f.err
}

func newService(sessions *fakeSessions, nav *fakeNavigator) *Service {
	return NewService(sessions, nav, zap.NewNop())
}

func TestQuery_InvalidIdentifierSkipsNavigation(t *testing.T) {
	sessions := &fakeSessions{sess: &fakeSession{}}
	nav := &fakeNavigator{}
	svc := newService(sessions, nav)

	_, err := svc.Query(context.Background(), "000.000.000-00")
	require.Error(t, err)

	var qe *Error
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, CategoryInvalidIdentifier, qe.Category)
	assert.Zero(t, sessions.acquired, "no session may be acquired for invalid input")
	assert.Zero(t, nav.calls, "no navigation may happen for invalid input")
}

func TestQuery_Success(t *testing.T) {
	sess := &fakeSession{}
	sessions := &fakeSessions{sess: sess}
	nav := &fakeNavigator{bonds: []bond.Bond{
		{Role: "Professor", Status: "Aposentado", RetirementDate: bond.ParseDate("15/05/2015")},
	}}
	svc := newService(sessions, nav)

	result, err := svc.Query(context.Background(), validCPF)
	require.NoError(t, err)

	assert.Equal(t, bond.Descarte, result.Outcome)
	require.NotNil(t, result.Date)
	assert.Equal(t, "15/05/2015", result.Date.Format(bond.DateLayout))
	assert.True(t, sess.released, "session must be released after the query")
	assert.Zero(t, sessions.recycled)
}

func TestQuery_EmptyBondList(t *testing.T) {
	sessions := &fakeSessions{sess: &fakeSession{}}
	nav := &fakeNavigator{bonds: []bond.Bond{}}
	svc := newService(sessions, nav)

	result, err := svc.Query(context.Background(), validCPF)
	require.NoError(t, err)
	assert.Equal(t, bond.Pesquisar, result.Outcome)
	assert.Nil(t, result.Date)
}

func TestQuery_NavigationTimeout(t *testing.T) {
	sess := &fakeSession{}
	sessions := &fakeSessions{sess: sess}
	nav := &fakeNavigator{err: &portal.NavError{Kind: portal.KindTimeout, Message: "results did not render before deadline"}}
	svc := newService(sessions, nav)

	_, err := svc.Query(context.Background(), validCPF)
	require.Error(t, err)

	var qe *Error
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, CategoryLookupFailed, qe.Category)
	assert.Equal(t, string(portal.KindTimeout), qe.Kind)
	assert.True(t, sess.released, "session must be released even on timeout")
	assert.Zero(t, sessions.recycled, "a plain timeout must not recycle the browser")
}

func TestQuery_FatalSessionTriggersRecycle(t *testing.T) {
	sess := &fakeSession{fatal: true}
	sessions := &fakeSessions{sess: sess}
	nav := &fakeNavigator{err: &portal.NavError{Kind: portal.KindStructure, Message: "browser action failed"}}
	svc := newService(sessions, nav)

	_, err := svc.Query(context.Background(), validCPF)
	require.Error(t, err)
	assert.Equal(t, 1, sessions.recycled)
	assert.True(t, sess.released)
}

func TestQuery_SessionInitFailure(t *testing.T) {
	sessions := &fakeSessions{acquireErr: assert.AnError}
	nav := &fakeNavigator{}
	svc := newService(sessions, nav)

	_, err := svc.Query(context.Background(), validCPF)
	require.Error(t, err)

	var qe *Error
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, CategoryLookupFailed, qe.Category)
	assert.Equal(t, "session_init", qe.Kind)
	assert.Zero(t, nav.calls)
}

func TestQuery_ChallengeDetected(t *testing.T) {
	sessions := &fakeSessions{sess: &fakeSession{}}
	nav := &fakeNavigator{err: &portal.NavError{Kind: portal.KindChallenge, Message: "anti-automation challenge detected"}}
	svc := newService(sessions, nav)

	_, err := svc.Query(context.Background(), validCPF)
	require.Error(t, err)

	var qe *Error
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, string(portal.KindChallenge), qe.Kind)
}

func TestQuery_CanceledByCaller(t *testing.T) {
	sess := &fakeSession{}
	sessions := &fakeSessions{sess: sess}
	nav := &fakeNavigator{err: &portal.NavError{Kind: portal.KindCanceled, Message: "lookup canceled before results rendered"}}
	svc := newService(sessions, nav)

	_, err := svc.Query(context.Background(), validCPF)
	require.Error(t, err)

	var qe *Error
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, string(portal.KindCanceled), qe.Kind, "aborted requests must not count as timeouts")
	assert.True(t, sess.released)
}

func TestQuery_ErrorNeverCarriesIdentifier(t *testing.T) {
	sessions := &fakeSessions{sess: &fakeSession{}}
	nav := &fakeNavigator{err: &portal.NavError{Kind: portal.KindTimeout, Message: "results did not render before deadline"}}
	svc := newService(sessions, nav)

	_, err := svc.Query(context.Background(), validCPF)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "52998224725")
	assert.NotContains(t, err.Error(), "529.982.247-25")
}
