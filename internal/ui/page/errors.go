package page

import "errors"

var errTransferNotConfirmed = errors.New("transfer not confirmed")
