/*
go-seglabel derives object annotations from simulated-camera datasets.

Each frame of a capture consists of a semantic segmentation colour map and a
float depth map.  Objects are selected by colour, their 2D bounding boxes are
extracted from the segmentation layer and a 3D camera-space position is
recovered by back-projecting the box centre through a pinhole camera model
using the paired depth sample.

Annotations are written in two interchange formats, a per-frame normalized
box file (YOLO) and a single cross-frame track history (MOT).  The package
also converts depth maps to disparity for stereo training data.

See the cmd/seglabel directory for the command line tool.
*/
package seglabel
