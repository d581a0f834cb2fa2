// Package boxauth resolves Box API credentials from the environment and
// turns them into token sources.
//
// Resolution is split in two phases. Resolve validates the environment for
// a chosen auth mode without any network traffic, reporting every missing
// variable at once. NewTokenSource then builds an oauth2.TokenSource that
// performs the actual grant on demand.
package boxauth
