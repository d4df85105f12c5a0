/*
Package supervisor runs a set of commands concurrently and multiplexes their
output onto one console, each line prefixed with the originating command's
name. It is the core of the shunt tool.

Each command is launched either under a pseudo-terminal (its stdout and
stderr become the pty slave, so the child keeps line buffering and color
output) or with stdout and stderr sharing a single pipe. One goroutine per
command drains the output transport line by line into the shared console,
and one goroutine per command waits for the child and reports its exit
status. SIGINT and SIGTERM received by the supervisor are forwarded to every
live child's process group.

The supervisor does not restart children, order them, or time them out: it
runs until every child has exited and its output has been drained.
*/
package supervisor
