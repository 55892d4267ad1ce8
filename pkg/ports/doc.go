/*
Package ports defines the driven ports (interfaces) for trace persistence.

These interfaces decouple the recorder and its consumers from external
implementations, allowing traces to be kept in memory, in Redis, or in a
version-controlled journal without the callers changing.

# Key Interfaces

  - TraceStore: persisting, listing, and retrieving recorded engine runs.

Adapter implementations live under pkg/adapters. Every adapter is verified
against the reusable suite in pkg/ports/tests.
*/
package ports
