// Package handlers implements the CareerGini specialist handlers:
// profile guidance, skills-gap analysis, job search, resume feedback,
// and learning resources. Each handler reads the turn state, consults
// its collaborators, and returns one partial result; all of them
// degrade to a deterministic answer when the completion service is
// unavailable.
package handlers
