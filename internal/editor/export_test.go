package editor

// SetAfterLint installs fn to run after every unlocked lint pass.
func SetAfterLint(w *Workspace, fn func()) { w.afterLint = fn }

// MaxAttempts exposes the retry bound.
const MaxAttempts = maxAttempts
