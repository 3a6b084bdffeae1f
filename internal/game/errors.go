package game

import "errors"

var ErrNotYourTurn = errors.New("not your turn")
var ErrRoomFull = errors.New("room is full - maximum 4 players")
var ErrNoTilesPlayed = errors.New("no tiles specified")
var ErrNoIndexes = errors.New("no tiles selected for exchange")
var ErrBagLow = errors.New("not enough tiles left in the bag to exchange")
