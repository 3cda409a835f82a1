// Package sendjob implements outbound delivery tracking.
//
// A send job records one delivery attempt of one or more documents to
// one recipient, by mail through PostGrid or by email through SES. The
// job is created PENDING, handed to the configured adapter, and from
// then on its status mirrors whatever the provider last reported:
// adapter results, webhook callbacks, and manual refreshes all
// overwrite status and provider response, last writer wins. The status
// vocabulary is open on purpose; providers report their own values and
// they are stored verbatim.
//
// The service layer contains pure business logic and depends on the
// Repository interface defined in repository.go plus small adapter
// interfaces in service.go. It never imports net/http or database/sql
// directly.
package sendjob
