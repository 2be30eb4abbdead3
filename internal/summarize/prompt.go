package summarize

import "mediascribe/internal/summarize/core"

// SystemPrompt and UserPrompt are shared by the HTTP providers. The summary is
// asked to open with a title line; the first non-empty line becomes the job title.
const SystemPrompt = core.SystemPrompt

const UserPrompt = core.UserPrompt
