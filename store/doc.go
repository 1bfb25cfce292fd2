// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store holds every topic in memory and keeps the persisted copy in
step with it.

# Reads

Get and List return published snapshots. A snapshot is never modified after
publication, so a reader always sees a topic whose counts, voter index and
vote trail agree with each other.

# Writes

Update runs a caller-supplied function under the topic's own lock:

	err := topics.Update(ctx, id, func(cur models.Topic) (models.Topic, error) {
		if cur.HasVoted(user) {
			return cur, ErrDuplicate
		}
		return cur.WithVote(vote), nil
	})

The returned state is saved through the Persister first and published only
if the save succeeds. A failed save yields ErrPersistence and leaves the
in-memory state untouched, so nothing is acknowledged that is not durable.

Saves are serialized and each one writes the complete current state, so
the stored document never goes backwards relative to memory.

# Lifecycle

	topics, err := store.Open(ctx, persister) // LoadTopics
	...
	topics.Flush(ctx)                          // final save at shutdown
*/
package store
