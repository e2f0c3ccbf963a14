package coordinator

import (
	"github.com/alitto/pond/v2"

	ethprovider "github.com/xampe11/nft-marketplace-project/internal/providers/ethereum"
)

// Stream groups the contract events served by one subscription and one worker queue
type Stream string

const (
	StreamTransfer Stream = "transfer"
	StreamListed   Stream = "listed"
	StreamSold     Stream = "sold"
	StreamCanceled Stream = "canceled"
)

// Streams lists every stream in subscription order
var Streams = []Stream{StreamTransfer, StreamListed, StreamSold, StreamCanceled}

// StreamOf returns the stream of a contract event name
func StreamOf(eventName string) (Stream, bool) {
	switch eventName {
	case ethprovider.EventTransfer:
		return StreamTransfer, true
	case ethprovider.EventItemListed:
		return StreamListed, true
	case ethprovider.EventItemBought, ethprovider.EventItemSold:
		return StreamSold, true
	case ethprovider.EventItemCanceled:
		return StreamCanceled, true
	default:
		return "", false
	}
}

// queues holds one single worker pool per stream
// A full queue blocks the submitter
type queues struct {
	pools map[Stream]pond.Pool
}

func newQueues(queueSize int) *queues {
	q := &queues{pools: make(map[Stream]pond.Pool, len(Streams))}
	for _, stream := range Streams {
		q.pools[stream] = pond.NewPool(1, pond.WithQueueSize(queueSize))
	}
	return q
}

// submit enqueues a task on the stream queue
func (q *queues) submit(stream Stream, task func() error) pond.Task {
	return q.pools[stream].SubmitErr(task)
}

// stopAndWait drains every queue
func (q *queues) stopAndWait() {
	for _, pool := range q.pools {
		pool.StopAndWait()
	}
}
