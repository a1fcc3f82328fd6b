// Package spawner abstracts the process/container lifecycle the manager
// drives for bootstrap and share-server units: spawn one, wait for it to
// register and later to stop, and remove it. The production target is a
// container runtime; LocalSpawner gives tests and the single-host demo a
// goroutine-backed stand-in with the identical contract.
package spawner

import "context"

// Handle identifies one spawned unit; ContainerID is the identity a unit
// reports back through setup.Master.Register.
type Handle struct {
	ContainerID string
}

// UnitFunc is the body of a spawned unit: it runs until ctx is canceled
// (Spawner.Stop) and then returns.
type UnitFunc func(ctx context.Context, containerID string)

// Spawner starts and tears down units. Spawn returns immediately with a
// Handle; the unit itself is expected to call back into a setup.Master to
// register once it is ready, the same rendezvous docker_utils.spawn_container
// plus SetupMaster.wait_for_container_id_registration implements for real
// containers.
type Spawner interface {
	Spawn(ctx context.Context, namePrefix string, fn UnitFunc) (Handle, error)
	WaitForStop(ctx context.Context, h Handle) error
	Stop(h Handle) error
	Remove(h Handle) error
}
