// SPDX-License-Identifier: MPL-2.0

// Package sshserver serves Vault Runner sessions over SSH using Wish.
//
// A session names a bundled example to run, or names a world and streams a
// program over stdin. The program runs on the embedded interpreter and the
// session watches the bot work: on a PTY the world is redrawn after every
// step, otherwise the final render is printed. Session exit codes mirror
// the CLI contract (0 reached, 1 not reached or faulted, 2 usage).
//
// Authentication is optional: servers started without a token accept every
// connection, which is intended for loopback demos only.
package sshserver
