package setup_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jonco5555/vault/setup"
)

func TestWaitForRegistrationReturnsImmediatelyIfAlreadyPresent(t *testing.T) {
	m := setup.NewMaster()
	rec := setup.ServiceRecord{Type: setup.ServiceTypeShareServer, ContainerID: "c1", IPAddress: "10.0.0.1"}
	m.Register(rec)

	got, err := m.WaitForRegistration(context.Background(), "c1", time.Second)
	require.NoError(t, err)
	require.Equal(t, rec, got)
}

func TestWaitForRegistrationUnblocksOnLateRegister(t *testing.T) {
	m := setup.NewMaster()
	rec := setup.ServiceRecord{Type: setup.ServiceTypeBootstrap, ContainerID: "c2", IPAddress: "10.0.0.2"}

	go func() {
		time.Sleep(20 * time.Millisecond)
		m.Register(rec)
	}()

	got, err := m.WaitForRegistration(context.Background(), "c2", time.Second)
	require.NoError(t, err)
	require.Equal(t, rec, got)
}

func TestWaitForRegistrationTimesOut(t *testing.T) {
	m := setup.NewMaster()
	_, err := m.WaitForRegistration(context.Background(), "missing", 30*time.Millisecond)
	require.ErrorIs(t, err, setup.ErrRegistrationTimeout)
}

func TestWaitForUnregistrationUnblocksOnUnregister(t *testing.T) {
	m := setup.NewMaster()
	rec := setup.ServiceRecord{Type: setup.ServiceTypeShareServer, ContainerID: "c3"}
	m.Register(rec)

	go func() {
		time.Sleep(20 * time.Millisecond)
		m.Unregister("c3")
	}()

	err := m.WaitForUnregistration(context.Background(), "c3", time.Second)
	require.NoError(t, err)
}

func TestIndicesAreMonotonicAndIndependent(t *testing.T) {
	m := setup.NewMaster()
	require.Equal(t, 1, m.NextBootstrapIndex())
	require.Equal(t, 1, m.NextShareServerIndex())
	require.Equal(t, 2, m.NextBootstrapIndex())
	require.Equal(t, 2, m.NextShareServerIndex())
	require.Equal(t, 3, m.NextBootstrapIndex())
}

func TestUnitTerminateClosesStoppedExactlyOnce(t *testing.T) {
	u := setup.NewUnit()
	select {
	case <-u.Stopped():
		t.Fatal("stopped before Terminate")
	default:
	}

	u.Terminate()
	u.Terminate() // must not panic on double-close

	select {
	case <-u.Stopped():
	case <-time.After(time.Second):
		t.Fatal("Stopped channel never closed")
	}
}
