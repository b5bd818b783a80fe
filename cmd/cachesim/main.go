// Command cachesim replays memory-access traces through a configurable
// cache hierarchy and records hit/miss statistics.
package main

func main() {
	Execute()
}
