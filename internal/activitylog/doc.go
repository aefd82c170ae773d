// Package activitylog is C2, the bounded activity ring consumed by the
// get_recent_logs command and the logs-appended notification.
package activitylog
