// Package markdown renders narrative summaries to markdown. The
// renderer is deliberately forgiving: it renders whatever sections the
// summary carries and omits the rest, so degraded summaries still
// produce readable output.
package markdown
