// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Id keys the troubleshooting catalog. Values start at 1 and stay dense.
type Id int

const (
	InterpreterNotFoundId Id = iota + 1
	InterpreterNotExecutableId
	ScriptNotFoundId
	ProgramNotFoundId
	ProgramParseErrorId
	WorldNotFoundId
	WorldParseErrorId
	ContainerEngineNotFoundId
	ConfigLoadFailedId
	InvalidRuntimeModeId
	ServeStartFailedId
)

// MarkdownMsg is the markdown body of a troubleshooting card.
type MarkdownMsg string

// HttpLink is an absolute URL to reference material outside the card.
type HttpLink string

// Issue pairs a stable ID with the troubleshooting card the CLI prints when
// the matching failure occurs.
type Issue struct {
	id       Id
	mdMsg    MarkdownMsg
	docLinks []HttpLink // rendered under a trailing "See also" heading
}

// Id returns the catalog key.
func (i *Issue) Id() Id { return i.id }

// MarkdownMsg returns the raw, unrendered card body.
func (i *Issue) MarkdownMsg() MarkdownMsg { return i.mdMsg }

// DocLinks returns the card's reference links. The slice is a clone; callers
// may reorder or truncate it freely.
func (i *Issue) DocLinks() []HttpLink { return slices.Clone(i.docLinks) }

// Render produces the styled terminal output for the card.
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 {
		md.WriteString("\n\n## See also:\n")
		for _, link := range i.docLinks {
			md.WriteString("- <")
			md.WriteString(string(link))
			md.WriteString(">\n")
		}
	}
	return render(md.String(), stylePath)
}

// render is a seam for tests.
var render = glamour.Render

var issues = index(
	&Issue{
		id: InterpreterNotFoundId,
		mdMsg: `
# Interpreter not found!

The interpreter executable could not be located, so nothing was launched.
The launcher exits with code 127 in this case, mirroring shell conventions.

## Things you can try:
- Check the interpreter is installed and on your PATH:
~~~
$ which python3
~~~

- Point vaultrun at a different interpreter:
~~~
$ vaultrun launch --interpreter /usr/local/bin/python3.12 -- --world maze
~~~

- Or set it once in ~/.config/vaultrun/config.cue:
~~~cue
interpreter: "/usr/local/bin/python3.12"
~~~

- Switch to the builtin runtime, which needs no interpreter at all:
~~~
$ vaultrun run --world maze program.bot
~~~`,
	},
	&Issue{
		id: InterpreterNotExecutableId,
		mdMsg: `
# Interpreter not executable!

The interpreter exists but the kernel refused to execute it. The launcher
exits with code 126, mirroring shell conventions.

## Common causes:
- Missing execute permission
- The path points at a directory
- Binary built for a different architecture

## Things you can try:
- Check the file mode:
~~~
$ ls -l $(which python3)
~~~

- Make it executable:
~~~
$ chmod +x /path/to/interpreter
~~~

- Verify it runs on its own:
~~~
$ /path/to/interpreter --version
~~~`,
	},
	&Issue{
		id: ScriptNotFoundId,
		mdMsg: `
# Script not found!

The script that should be handed to the interpreter does not exist. The
interpreter would only fail with its own error after launch, so vaultrun
checks first and tells you directly.

## Things you can try:
- Check the script path:
~~~
$ ls main.py
~~~

- Point vaultrun at the right file:
~~~
$ vaultrun launch --script /path/to/main.py -- --world maze
~~~

- Or set it in ~/.config/vaultrun/config.cue:
~~~cue
script: "/path/to/main.py"
~~~

- Run from the script's directory instead:
~~~
$ vaultrun launch --workdir /path/to/project -- --world maze
~~~`,
	},
	&Issue{
		id: ProgramNotFoundId,
		mdMsg: `
# Program file not found!

The bot program you asked to run does not exist.

## Things you can try:
- Check the path for typos
- List the builtin example programs:
~~~
$ vaultrun examples
~~~

- Print one to get started:
~~~
$ vaultrun examples show corridor-walk
~~~`,
	},
	&Issue{
		id: ProgramParseErrorId,
		mdMsg: `
# Failed to parse program!

The bot program contains a syntax error or violates a structural limit.

## Common issues:
- Missing colon after IF/ELSE/LOOP headers
- IF without a matching ENDIF, LOOP without ENDLOOP
- Nesting deeper than 3 levels
- LOOP count above 50
- Unknown word where a sensor was expected

## Things you can try:
- Check the line number in the error message above
- Validate without executing:
~~~
$ vaultrun validate program.bot
~~~

## Example of a valid program:
~~~
LOOP 10:
  IF FRONT_CLEAR:
    MOVE
  ELSE:
    RIGHT
  ENDIF
ENDLOOP
~~~`,
	},
	&Issue{
		id: WorldNotFoundId,
		mdMsg: `
# World not found!

The world you named is neither a builtin preset nor a readable file.

## Things you can try:
- List the builtin worlds:
~~~
$ vaultrun worlds
~~~

- Check the file path:
~~~
$ ls maze.cue
~~~

- Render a builtin world to see what one looks like:
~~~
$ vaultrun render corridor
~~~`,
	},
	&Issue{
		id: WorldParseErrorId,
		mdMsg: `
# Failed to parse world file!

The world file contains invalid CUE or violates the world schema.

## Common issues:
- Rows of unequal length
- Start position outside the grid
- Direction other than N, E, S or W
- Invalid CUE syntax (missing quotes, braces, etc.)

## Things you can try:
- Check the error message above for the offending field
- Compare with a builtin world:
~~~
$ vaultrun render corridor
~~~

## Example of a valid world file:
~~~cue
name: "tiny"
rows: [
	"WWWWW",
	"W.K.W",
	"W.WDW",
	"W..EW",
	"WWWWW",
]
start: {x: 1, y: 1}
direction: "S"
~~~`,
		docLinks: []HttpLink{
			"https://cuelang.org/docs/",
		},
	},
	&Issue{
		id: ContainerEngineNotFoundId,
		mdMsg: `
# Container engine not found!

The 'container' runtime needs Podman or Docker, and neither answered on this
machine. vaultrun exits with code 125 because nothing was launched.

## Things you can try:
- Install Podman (runs rootless, no daemon needed):
~~~
$ sudo apt install podman     # Debian/Ubuntu
$ brew install podman         # macOS
~~~

- Or install Docker and make sure its daemon is running:
~~~
$ docker info
~~~

- Skip containers entirely:
~~~
$ vaultrun launch --runtime native -- --world maze
~~~

- Pin the engine you want in ~/.config/vaultrun/config.cue:
~~~cue
container: engine: "podman"  // or "docker"
~~~`,
		docLinks: []HttpLink{
			"https://podman.io/docs/installation",
			"https://docs.docker.com/engine/install/",
		},
	},
	&Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The vaultrun config file exists but could not be read or did not validate.
The error above names the offending field.

## Where vaultrun looks:
- Linux: ~/.config/vaultrun/config.cue
- macOS: ~/Library/Application Support/vaultrun/config.cue
- Windows: %APPDATA%\vaultrun\config.cue

## Things you can try:
- Start over from a known-good default:
~~~
$ vaultrun config init
~~~

- Or delete the file; every setting has a working default:
~~~
$ rm ~/.config/vaultrun/config.cue
~~~

## Example configuration:
~~~cue
interpreter: "python3"
script: "main.py"
runtime: "native"

container: {
	image: "python:3.12-alpine"
}
~~~`,
		docLinks: []HttpLink{
			"https://cuelang.org/docs/",
		},
	},
	&Issue{
		id: InvalidRuntimeModeId,
		mdMsg: `
# Invalid runtime mode!

vaultrun knows three ways to run a program, and the runtime you asked for
is not one of them.

## Valid runtime modes:
- **native**: Spawn the interpreter as a child process
- **builtin**: Run the program with the built-in Go interpreter
- **container**: Spawn the interpreter inside a container

## Example:
~~~
$ vaultrun launch --runtime native -- --world maze
~~~

Or in ~/.config/vaultrun/config.cue:
~~~cue
runtime: "builtin"
~~~`,
	},
	&Issue{
		id: ServeStartFailedId,
		mdMsg: `
# Dang, we have run into an issue!

We have failed to start the vaultrun SSH server.

## Common causes:
- The listen port is already in use
- No permission to bind the address
- Binding a privileged port (below 1024) without the capability to do so

## Things you can try:
- Pick a different port:
~~~
$ vaultrun serve --port 2223
~~~

- Check what holds the port:
~~~
$ ss -tlnp | grep 2222
~~~

- Bind the loopback interface only:
~~~
$ vaultrun serve --host 127.0.0.1
~~~`,
	},
)

func index(all ...*Issue) map[Id]*Issue {
	m := make(map[Id]*Issue, len(all))
	for _, iss := range all {
		m[iss.id] = iss
	}
	return m
}

// Values returns every issue in the catalog, in no particular order.
func Values() []*Issue {
	return maps.Values(issues)
}

// Get returns the issue registered under id, or nil for unknown IDs.
func Get(id Id) *Issue {
	return issues[id]
}
