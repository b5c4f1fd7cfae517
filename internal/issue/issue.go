// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"

	"github.com/charmbracelet/glamour"
)

// Id identifies a catalog entry.
type Id int

const (
	PythonNotFoundId Id = iota + 1
	ProvisioningFailedId
	PermissionDeniedId
	ExecutionFailedId
	OutputParseFailedId
	ProcessKillFailedId
	NoWorkspaceId
	ConfigLoadFailedId
	SetupGuideId
)

type (
	MarkdownMsg string

	HttpLink string

	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		extLinks []HttpLink  // external links that might be useful for the user
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue Markdown with the given glamour style ("dark", "light", "notty", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.extLinks) > 0 {
		md += "\n\n## See also\n"
		for _, link := range i.extLinks {
			md += "\n- <" + string(link) + ">"
		}
	}
	return render(md, stylePath)
}

var (
	render = glamour.Render

	pythonNotFoundIssue = &Issue{
		id: PythonNotFoundId,
		mdMsg: `
# Python is not installed or not in PATH

No usable Python 3 interpreter answered ` + "`--version`" + `.

## Candidates tried
- Linux and macOS: ` + "`python3`, `python`" + `
- Windows: ` + "`py -3`, `python`, `python3`" + `

## Things you can try
- Install Python 3 from your package manager or python.org
- Make sure the interpreter directory is on your PATH
- Point ingestkit at a specific interpreter:
~~~cue
python: candidates: [["/opt/python3.12/bin/python3"]]
~~~`,
		extLinks: []HttpLink{"https://www.python.org/downloads/"},
	}

	provisioningFailedIssue = &Issue{
		id: ProvisioningFailedId,
		mdMsg: `
# Could not install the gitingest package

Every installation strategy failed: user site, project virtual environment and
home virtual environment.

## Things you can try
- Install the package manually and re-run the analysis:
~~~
$ python3 -m pip install --user gitingest
~~~
- Make sure the ` + "`venv`" + ` module is available (Debian and Ubuntu ship it separately):
~~~
$ sudo apt install python3-venv
~~~
- Remove a broken environment so it can be recreated:
~~~
$ rm -rf .venv ~/.ingestkit/venv
~~~`,
		extLinks: []HttpLink{"https://github.com/cyclotruc/gitingest"},
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied

ingestkit could not write to a directory it needs.

## Common causes
- The project directory is read-only, so ` + "`.venv`" + ` cannot be created
- The digest or ingest folder target belongs to another user

## Things you can try
- Check file and directory permissions
- Run ingestkit from a directory you own
- Configure a home environment path you can write to:
~~~cue
provision: home_venv: "/tmp/ingestkit-venv"
~~~`,
	}

	executionFailedIssue = &Issue{
		id: ExecutionFailedId,
		mdMsg: `
# Analysis failed

The analysis process exited with an error or produced no output.
The messages printed above come from its error stream.

## Things you can try
- Re-run with ` + "`--verbose`" + ` to see the exact command
- Run the analysis by hand:
~~~
$ ingestkit analyze --dry-run .
~~~
- Upgrade the package inside the environment:
~~~
$ .venv/bin/python -m pip install --upgrade gitingest
~~~`,
	}

	outputParseFailedIssue = &Issue{
		id: OutputParseFailedId,
		mdMsg: `
# Could not read the analysis output

The analysis finished but did not print a valid JSON document with
` + "`summary`, `tree` and `content`" + ` fields.

## Things you can try
- Upgrade the gitingest package, its output format may have changed
- Check that nothing in your Python startup prints to standard output
  (for example a ` + "`sitecustomize.py`" + `)`,
	}

	processKillFailedIssue = &Issue{
		id: ProcessKillFailedId,
		mdMsg: `
# Failed to kill process

The running analysis could not be terminated.

## Things you can try
- Find the process and stop it by hand:
~~~
$ ps aux | grep gitingest
~~~
- On Windows:
~~~
> taskkill /IM python.exe /T /F
~~~`,
	}

	noWorkspaceIssue = &Issue{
		id: NoWorkspaceId,
		mdMsg: `
# No workspace folder open

This operation needs a workspace root.

## Things you can try
- Run ingestkit from inside your project directory
- Pass the workspace explicitly:
~~~
$ ingestkit analyze --workspace ~/src/project
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration

The configuration file could not be parsed or did not match the schema.

## Things you can try
- Show where the file lives:
~~~
$ ingestkit config path
~~~
- Write a fresh file with all defaults:
~~~
$ ingestkit config init --force
~~~`,
	}

	setupGuideIssue = &Issue{
		id: SetupGuideId,
		mdMsg: `
# Setting up ingestkit

ingestkit drives the [gitingest](https://github.com/cyclotruc/gitingest) Python package.

## 1. Install Python 3
- macOS: ` + "`brew install python`" + `
- Debian and Ubuntu: ` + "`sudo apt install python3 python3-venv python3-pip`" + `
- Windows: install from python.org and tick *Add python.exe to PATH*

## 2. Let ingestkit install gitingest
~~~
$ ingestkit doctor
~~~
The package goes into your user site first, then ` + "`.venv`" + ` in the project,
then ` + "`~/.ingestkit/venv`" + `.

## 3. Analyze
~~~
$ ingestkit analyze .
$ ingestkit analyze --save .
~~~`,
		extLinks: []HttpLink{"https://www.python.org/downloads/", "https://github.com/cyclotruc/gitingest"},
	}

	issues = map[Id]*Issue{
		pythonNotFoundIssue.Id():     pythonNotFoundIssue,
		provisioningFailedIssue.Id(): provisioningFailedIssue,
		permissionDeniedIssue.Id():   permissionDeniedIssue,
		executionFailedIssue.Id():    executionFailedIssue,
		outputParseFailedIssue.Id():  outputParseFailedIssue,
		processKillFailedIssue.Id():  processKillFailedIssue,
		noWorkspaceIssue.Id():        noWorkspaceIssue,
		configLoadFailedIssue.Id():   configLoadFailedIssue,
		setupGuideIssue.Id():         setupGuideIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int {
		return int(a.id) - int(b.id)
	})
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
