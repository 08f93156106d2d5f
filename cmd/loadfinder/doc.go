// Command loadfinder is the freight load lifecycle CLI: it ingests feed
// records, shortlists and scores candidates, and serves the JSON API.
package main
