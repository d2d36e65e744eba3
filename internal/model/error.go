package model

import "errors"

var ErrorMessageNotFound = errors.New("message not found")
var ErrorInvalidAddress = errors.New("invalid address")
var ErrorSyncInProgress = errors.New("sync already in progress")
