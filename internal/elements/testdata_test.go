package elements

const (
	issLine1 = "1 25544U 98067A   25138.37048074  .00007749  00000+0  14567-3 0  9994"
	issLine2 = "2 25544  51.6369  94.7823 0002558 120.7586  15.7840 15.49587957510533"

	issKVN = `CCSDS_OMM_VERS = 2.0
COMMENT  GENERATED VIA SPACE-TRACK.ORG API
CREATION_DATE = 2025-05-18T10:00:00
ORIGINATOR = 18 SPCS
OBJECT_NAME = ISS (ZARYA)
OBJECT_ID = 1998-067A
CENTER_NAME = EARTH
REF_FRAME = TEME
TIME_SYSTEM = UTC
MEAN_ELEMENT_THEORY = SGP4
EPOCH = 2025-05-18T08:53:29.535936
MEAN_MOTION = 15.49587957 [rev/day]
ECCENTRICITY = 0.0002558
INCLINATION = 51.6369 [deg]
RA_OF_ASC_NODE = 94.7823 [deg]
ARG_OF_PERICENTER = 120.7586 [deg]
MEAN_ANOMALY = 15.7840 [deg]
EPHEMERIS_TYPE = 0
CLASSIFICATION_TYPE = U
NORAD_CAT_ID = 25544
ELEMENT_SET_NO = 999
REV_AT_EPOCH = 51053
BSTAR = 0.00014567
MEAN_MOTION_DOT = 0.00007749
MEAN_MOTION_DDOT = 0
`

	issJSON = `[{"OBJECT_NAME":"ISS (ZARYA)","OBJECT_ID":"1998-067A","EPOCH":"2025-05-18T08:53:29.535936",
"MEAN_MOTION":15.49587957,"ECCENTRICITY":0.0002558,"INCLINATION":51.6369,"RA_OF_ASC_NODE":94.7823,
"ARG_OF_PERICENTER":120.7586,"MEAN_ANOMALY":15.784,"EPHEMERIS_TYPE":0,"CLASSIFICATION_TYPE":"U",
"NORAD_CAT_ID":25544,"ELEMENT_SET_NO":999,"REV_AT_EPOCH":51053,"BSTAR":0.00014567,
"MEAN_MOTION_DOT":7.749e-5,"MEAN_MOTION_DDOT":0}]`
)
