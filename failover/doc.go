/*
Package failover implements primary/backup coordination for a single data producer.

Roles:

	Producer - streams sequenced Records to a sink and reports every successful
	           send to the Monitor with a "success:<count>" liveness signal.
	Monitor  - receives liveness signals and runs a dead-man's-switch sweep.
	           When the producer goes silent (or reports "fail:<count>") the
	           Monitor promotes a standby Producer that continues the sequence.

State machine (one mutex, shared by signal handler and sweep):

	HEALTHY --sweep--> ARMED --sweep--> promote standby (counter += gap offset)
	   ^                 |
	   +----success------+

	any state --fail:<c>--> promote standby (counter = c)

There is no FAILED state; promotion is an action. A healthy producer is only
declared dead after one sweep to arm and one sweep to confirm, so the detection
latency floor is one sweep interval and the ceiling is two. Shortening the sweep
interval lowers latency and raises the chance of promoting a producer that was
only slow.

The sequence Counter is shared between the active Producer and the Monitor and
is passed explicitly through constructors. Writes are last-writer-wins unless
the Monitor is configured to reject stale signals.
*/
package failover
