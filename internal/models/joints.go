package models

import "fmt"

// JointID identifies a body landmark. The numeric values follow the
// MediaPipe pose landmark indices so that frames coming from the Python
// detector need no remapping.
type JointID int

const (
	Nose JointID = 0

	LeftShoulder  JointID = 11
	RightShoulder JointID = 12
	LeftElbow     JointID = 13
	RightElbow    JointID = 14
	LeftWrist     JointID = 15
	RightWrist    JointID = 16

	LeftHip    JointID = 23
	RightHip   JointID = 24
	LeftKnee   JointID = 25
	RightKnee  JointID = 26
	LeftAnkle  JointID = 27
	RightAnkle JointID = 28

	LeftHeel       JointID = 29
	RightHeel      JointID = 30
	LeftFootIndex  JointID = 31
	RightFootIndex JointID = 32
)

var jointNames = map[JointID]string{
	Nose:           "nose",
	LeftShoulder:   "left_shoulder",
	RightShoulder:  "right_shoulder",
	LeftElbow:      "left_elbow",
	RightElbow:     "right_elbow",
	LeftWrist:      "left_wrist",
	RightWrist:     "right_wrist",
	LeftHip:        "left_hip",
	RightHip:       "right_hip",
	LeftKnee:       "left_knee",
	RightKnee:      "right_knee",
	LeftAnkle:      "left_ankle",
	RightAnkle:     "right_ankle",
	LeftHeel:       "left_heel",
	RightHeel:      "right_heel",
	LeftFootIndex:  "left_foot_index",
	RightFootIndex: "right_foot_index",
}

func (j JointID) String() string {
	if name, ok := jointNames[j]; ok {
		return name
	}
	return fmt.Sprintf("joint_%d", int(j))
}

// TrackedJoints lists the landmarks the pipeline cares about. Everything
// else coming from the detector (face, hands) is dropped at the bridge.
var TrackedJoints = []JointID{
	Nose,
	LeftShoulder, RightShoulder,
	LeftElbow, RightElbow,
	LeftWrist, RightWrist,
	LeftHip, RightHip,
	LeftKnee, RightKnee,
	LeftAnkle, RightAnkle,
	LeftHeel, RightHeel,
	LeftFootIndex, RightFootIndex,
}

// Skeleton holds the joint pairs the annotator draws lines between.
var Skeleton = [][2]JointID{
	{LeftShoulder, RightShoulder},
	{LeftShoulder, LeftElbow},
	{LeftElbow, LeftWrist},
	{RightShoulder, RightElbow},
	{RightElbow, RightWrist},
	{LeftShoulder, LeftHip},
	{RightShoulder, RightHip},
	{LeftHip, RightHip},
	{LeftHip, LeftKnee},
	{LeftKnee, LeftAnkle},
	{RightHip, RightKnee},
	{RightKnee, RightAnkle},
	{LeftAnkle, LeftHeel},
	{LeftHeel, LeftFootIndex},
	{RightAnkle, RightHeel},
	{RightHeel, RightFootIndex},
}
