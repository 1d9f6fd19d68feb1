package services

import "errors"

// Workflow failure taxonomy. Every operation wraps its failures in one of
// these sentinels so callers can tell what broke without parsing messages;
// the HTTP layer collapses them all into a single error flash regardless.
var (
	ErrQuery   = errors.New("invoice: store query failed")
	ErrRender  = errors.New("invoice: pdf render failed")
	ErrStorage = errors.New("invoice: file store failed")
	ErrPersist = errors.New("invoice: record persist failed")
	ErrMail    = errors.New("invoice: email dispatch failed")
)
