package core

import "strconv"

// BoneID identifies a skeletal joint within a hierarchy
type BoneID int32

// BoneNone is the reserved "no parent / no bone" sentinel
const BoneNone BoneID = -1

// Valid reports whether the id names a real bone
func (b BoneID) Valid() bool {
	return b >= 0
}

func (b BoneID) String() string {
	if b == BoneNone {
		return "none"
	}
	return "bone#" + strconv.Itoa(int(b))
}
