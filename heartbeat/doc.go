// Package heartbeat locates, decodes and judges the heartbeat record that the
// BBS server rewrites periodically.
//
// A record is one pipe-delimited line:
//
//	timestamp|status[|readerAlive[|lastRxTimestamp]]
//
// Resolution prefers an explicit override path. Otherwise the run directory
// under the working directory and the platform temp directory are scanned for
// bbs_heartbeat and bbs_heartbeat_<pid>; a file suffixed with the live server
// PID always wins, and recency breaks the remaining ties.
//
// A record is healthy when it is fresh, reports CONNECTED, reports a live
// reader, and has received data recently. Timestamps in the future never
// produce a negative age: they are treated as infinitely stale. This holds
// for the last-receive timestamp too, so a record written at 1700000000
// with lastRx 1700000050, judged at 1700000030, is fresh but fails the
// rx-flow condition rather than reporting a receive age of -20s.
package heartbeat
