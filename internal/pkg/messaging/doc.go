// Package messaging publishes and consumes domain events without tying use
// cases to a broker.
//
// Drivers: NATS core subjects with queue groups, Kafka topics with consumer
// groups, and an in-process memory bus for development and tests.
package messaging
