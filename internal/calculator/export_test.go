package calculator

var NearestIndex = nearestIndex
