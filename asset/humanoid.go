package asset

// DefaultHumanoidRig returns the default humanoid rig YAML
const DefaultHumanoidRig = `
name: humanoid

# === Skeleton ===
# Declaration order defines bone ids; offsets are relative to the parent, meters

bones:
  - { name: hips, offset: [0, 1.0, 0] }
  - { name: spine, parent: hips, offset: [0, 0.12, 0] }
  - { name: chest, parent: spine, offset: [0, 0.18, 0] }
  - { name: neck, parent: chest, offset: [0, 0.22, 0] }
  - { name: head, parent: neck, offset: [0, 0.1, 0] }

  - { name: left_shoulder, parent: chest, offset: [-0.08, 0.18, 0] }
  - { name: left_upper_arm, parent: left_shoulder, offset: [-0.1, 0, 0] }
  - { name: left_lower_arm, parent: left_upper_arm, offset: [-0.28, 0, 0] }
  - { name: left_hand, parent: left_lower_arm, offset: [-0.25, 0, 0] }

  - { name: right_shoulder, parent: chest, offset: [0.08, 0.18, 0] }
  - { name: right_upper_arm, parent: right_shoulder, offset: [0.1, 0, 0] }
  - { name: right_lower_arm, parent: right_upper_arm, offset: [0.28, 0, 0] }
  - { name: right_hand, parent: right_lower_arm, offset: [0.25, 0, 0] }

  - { name: left_upper_leg, parent: hips, offset: [-0.09, -0.05, 0] }
  - { name: left_lower_leg, parent: left_upper_leg, offset: [0, -0.42, 0] }
  - { name: left_foot, parent: left_lower_leg, offset: [0, -0.42, 0] }

  - { name: right_upper_leg, parent: hips, offset: [0.09, -0.05, 0] }
  - { name: right_lower_leg, parent: right_upper_leg, offset: [0, -0.42, 0] }
  - { name: right_foot, parent: right_lower_leg, offset: [0, -0.42, 0] }

# === Poses ===
# Rotations are world-relative Euler degrees (x, y, z)

poses:
  - id: wave
    interpolable: true
    bones:
      - { bone: right_upper_arm, euler: [0, 0, 80] }
      - { bone: right_lower_arm, euler: [0, 0, 150] }
      - { bone: right_hand, euler: [0, 0, 150] }

  - id: arms_down
    interpolable: true
    bones:
      - { bone: left_upper_arm, euler: [0, 0, 80] }
      - { bone: left_lower_arm, euler: [0, 0, 80] }
      - { bone: right_upper_arm, euler: [0, 0, -80] }
      - { bone: right_lower_arm, euler: [0, 0, -80] }

  - id: sit
    interpolable: false
    anchor: { bone: hips, position: [0, 0.5, 0], euler: [0, 0, 0] }
    bones:
      - { bone: left_upper_leg, euler: [90, 0, 0] }
      - { bone: right_upper_leg, euler: [90, 0, 0] }
      - { bone: left_lower_leg, euler: [0, 0, 0] }
      - { bone: right_lower_leg, euler: [0, 0, 0] }

# === Constraints ===

constraints:
  - id: hand_follows_target
    kind: node
    bone: right_hand
    node: target
    position_offset: [0, 0, 0]
    rotation_offset: [0, 0, 0]
    should_apply: false

  - id: hands_together
    kind: bone
    bone: left_hand
    reference: right_hand
    position_offset: [-0.05, 0, 0]
    rotation_offset: [0, 180, 0]
    should_apply: false

  - id: left_foot_planted
    kind: floor
    bone: left_foot
    height: 0
    position_offset: [0, 0.04, 0]
    rotation_offset: [0, 0, 0]
    should_apply: false

# === Animators ===

animators:
  - id: wave
    pose: wave
    mode: on_request
    min_duration: 500ms
    max_duration: 3s
    conditions:
      - { type: expression, expr: "head_y > 1.0" }

  - id: sit
    pose: sit
    mode: on_trigger
    fixed_duration: 2s
`
