// SPDX-License-Identifier: MPL-2.0

// Package container abstracts the container engines (Docker/Podman) used to
// launch an interpreter inside an image instead of on the host. Engines are
// driven through their CLI binaries so the launcher works against whichever
// engine the machine actually has.
package container
