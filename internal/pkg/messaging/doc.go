// Package messaging is the broker abstraction the modules publish and
// consume through. Four drivers sit behind one interface (NSQ, NATS,
// Kafka, Google Pub/Sub), selected by name at startup, so the event flow
// between modules never depends on a particular broker API.
package messaging
