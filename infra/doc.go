// Package infra contains technical adapters: XML documents, table sinks,
// metrics recorders, MQTT publishing, logging and error reporting. These
// packages implement the interfaces defined in the core packages.
package infra
