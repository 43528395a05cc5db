package peer

import "github.com/spacemeshos/go-treesync/treesync"

//go:generate mockgen -typed -package=peer -destination=./mocks.go -source=./interface.go

// Conduit transfers the messages of a traversal and marks its end.
type Conduit interface {
	treesync.Conduit
	SendDone() error
	ReceiveDone() error
}
