// Package procscan finds the monitored server process.
//
// The operating system is reached only through the Table capability
// interface so the prober can be exercised against a fake table. A process
// is accepted when its command line contains the expected marker and a
// signal-0 delivery either succeeds or is refused for lack of permission;
// permission errors prove existence, which is all that matters here.
package procscan
